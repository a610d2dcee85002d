package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securedocs/fileshare/internal/core/ports"
)

// FileHandler handles upload, listing, and secure downloads.
type FileHandler struct {
	fileService ports.FileService
	linkService ports.LinkService
}

func NewFileHandler(fileService ports.FileService, linkService ports.LinkService) *FileHandler {
	return &FileHandler{fileService: fileService, linkService: linkService}
}

// Upload stores a multipart file for an ops user.
//
// @Summary      Upload a file
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Office document to upload"
// @Success      200   {object}  uploadResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	result, err := h.fileService.Upload(c.Request().Context(), ports.UploadInput{
		OwnerID:     userID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        src,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, uploadResponse{FileID: result.FileID})
}

// List returns metadata for all uploaded files.
//
// @Summary      List files
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   fileInfoResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /files [get]
func (h *FileHandler) List(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	infos, err := h.fileService.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]fileInfoResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, fileInfoResponse{
			ID:          info.ID,
			Filename:    info.Filename,
			ContentType: info.ContentType,
			SizeBytes:   info.SizeBytes,
			UploadedAt:  info.UploadedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// DownloadLink mints a short-lived download URL for one file.
//
// @Summary      Request a secure download link
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        file_id  path      string  true  "File id"
// @Success      200      {object}  downloadLinkResponse
// @Failure      401      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /download-file/{file_id} [get]
func (h *FileHandler) DownloadLink(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	url, err := h.linkService.CreateDownloadLink(c.Request().Context(), c.Param("file_id"), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, downloadLinkResponse{DownloadLink: url})
}

// Download streams file bytes for a valid link token. The token itself is
// the credential: no bearer auth is required here.
//
// @Summary      Download a file via a secure link
// @Tags         files
// @Produce      octet-stream
// @Param        token  path  string  true  "Signed download token"
// @Success      200  {file}    file
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      410  {object}  errorResponse
// @Router       /download/{token} [get]
func (h *FileHandler) Download(c echo.Context) error {
	dl, err := h.linkService.ResolveDownloadLink(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, dl.Record.Filename))
	return c.Stream(http.StatusOK, dl.Record.ContentType, dl.Body)
}
