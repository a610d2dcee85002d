package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/securedocs/fileshare/internal/api"
	"github.com/securedocs/fileshare/internal/api/handler"
	"github.com/securedocs/fileshare/internal/api/middleware"
	"github.com/securedocs/fileshare/internal/core/domain"
	"github.com/securedocs/fileshare/internal/core/ports"
	"github.com/securedocs/fileshare/internal/core/service"
)

const (
	baseURL  = "http://api.test"
	pptxType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// --- In-memory adapters ---
//
// These mirror the semantics of the Mongo and Redis implementations closely
// enough to drive the full HTTP flow: unique emails, one-time verification
// tokens, and an atomic consume-once guard for download links.

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]string{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrDuplicateEmail
	}
	u := *user
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = u.ID
	out := u
	return &out, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUserRepo) MarkVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = true
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.VerificationToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]*domain.VerificationToken{}}
}

func (r *memTokenRepo) Replace(_ context.Context, token *domain.VerificationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.tokens {
		if v.UserID == token.UserID {
			delete(r.tokens, k)
		}
	}
	t := *token
	r.tokens[t.Token] = &t
	return nil
}

func (r *memTokenRepo) Consume(_ context.Context, token string) (*domain.VerificationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	delete(r.tokens, token)
	out := *t
	return &out, nil
}

type memFileRepo struct {
	mu      sync.Mutex
	records map[string]*domain.FileRecord
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{records: map[string]*domain.FileRecord{}}
}

func (r *memFileRepo) Create(_ context.Context, record *domain.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.records[rec.ID] = &rec
	return nil
}

func (r *memFileRepo) FindByID(_ context.Context, id string) (*domain.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	out := *rec
	return &out, nil
}

func (r *memFileRepo) List(_ context.Context) ([]*domain.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.FileRecord, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[string][]byte{}}
}

func (s *memBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *memBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// memConsumer mimics Redis SetNX: the first Consume of an id wins.
type memConsumer struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (c *memConsumer) Consume(_ context.Context, id string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if c.seen[id] {
		return false, nil
	}
	c.seen[id] = true
	return true, nil
}

// captureMail records mail synchronously instead of going through the
// async dispatcher.
type captureMail struct {
	mu   sync.Mutex
	sent []ports.VerificationMail
}

func (m *captureMail) Enqueue(mail ports.VerificationMail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
}

// newTestServer wires real services, handlers, and middleware over the
// in-memory adapters, registering the same routes the production router does.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()

	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	files := newMemFileRepo()
	blobs := newMemBlobStore()
	mail := &captureMail{}

	const jwtSecret = "test-jwt-secret"
	const linkSecret = "test-link-secret"

	authService := service.NewAuthService(
		users, tokens, mail, jwtSecret, time.Hour, time.Hour, baseURL, log)
	fileService := service.NewFileService(files, blobs, log)
	linkService := service.NewLinkService(
		files, blobs, &memConsumer{}, linkSecret, 10*time.Minute, true, baseURL, log)

	authHandler := handler.NewAuthHandler(authService)
	fileHandler := handler.NewFileHandler(fileService, linkService)
	auth := middleware.Auth(jwtSecret)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(log)

	e.POST("/signup", authHandler.Signup)
	e.GET("/verify-email/:token", authHandler.VerifyEmail)
	e.POST("/login", authHandler.Login)
	e.POST("/upload", fileHandler.Upload,
		auth, middleware.RequireOperation(domain.OpUploadFile))
	e.GET("/files", fileHandler.List,
		auth, middleware.RequireOperation(domain.OpListFiles))
	e.GET("/download-file/:file_id", fileHandler.DownloadLink,
		auth, middleware.RequireOperation(domain.OpDownloadFile))
	e.GET("/download/:token", fileHandler.Download)

	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// signupAndLogin runs the full signup → verify → login flow and returns the
// bearer token.
func signupAndLogin(t *testing.T, e *echo.Echo, email, password, role string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"email": email, "password": password, "role": role,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	secureURL, _ := decodeJSON(t, rec)["secure_url"].(string)
	require.True(t, strings.HasPrefix(secureURL, baseURL+"/verify-email/"), secureURL)

	rec = do(e, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(secureURL, baseURL), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form := url.Values{"username": {email}, "password": {password}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, _ := decodeJSON(t, rec)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func uploadRequest(t *testing.T, filename, contentType, content, bearer string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	return req
}

func TestAPI_FullFlow(t *testing.T) {
	e := newTestServer(t)

	opsToken := signupAndLogin(t, e, "ops@example.com", "strongpass1", "ops")
	clientToken := signupAndLogin(t, e, "client@example.com", "strongpass2", "client")

	// Ops uploads an office document.
	rec := do(e, uploadRequest(t, "deck.pptx", pptxType, "test content", opsToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fileID, _ := decodeJSON(t, rec)["file_id"].(string)
	require.NotEmpty(t, fileID)

	// Client sees it in the listing.
	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+clientToken)
	rec = do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listing []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	require.Equal(t, fileID, listing[0]["id"])

	// Client requests a download link for the file.
	req = httptest.NewRequest(http.MethodGet, "/download-file/"+fileID, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+clientToken)
	rec = do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	link, _ := decodeJSON(t, rec)["download-link"].(string)
	require.True(t, strings.HasPrefix(link, baseURL+"/download/"), link)

	// Fetching the link streams the original bytes without bearer auth.
	rec = do(e, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(link, baseURL), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "test content", rec.Body.String())

	// The link is single use.
	rec = do(e, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(link, baseURL), nil))
	require.Equal(t, http.StatusGone, rec.Code)
	require.Contains(t, rec.Body.String(), "Download link already used")
}

func TestAPI_RoleEnforcement(t *testing.T) {
	e := newTestServer(t)

	opsToken := signupAndLogin(t, e, "ops@example.com", "strongpass1", "ops")
	clientToken := signupAndLogin(t, e, "client@example.com", "strongpass2", "client")

	// Clients cannot upload.
	rec := do(e, uploadRequest(t, "deck.pptx", pptxType, "x", clientToken))
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	// Ops cannot list or request download links.
	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+opsToken)
	rec = do(e, req)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/download-file/some-id", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+opsToken)
	rec = do(e, req)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	// No token at all is a 401 on protected routes.
	rec = do(e, httptest.NewRequest(http.MethodGet, "/files", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_UploadRejectsDisallowedType(t *testing.T) {
	e := newTestServer(t)
	opsToken := signupAndLogin(t, e, "ops@example.com", "strongpass1", "ops")

	rec := do(e, uploadRequest(t, "report.pdf", "application/pdf", "x", opsToken))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid file type")
}

func TestAPI_LoginRequiresVerification(t *testing.T) {
	e := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{
		"email": "pending@example.com", "password": "strongpass1", "role": "client",
	})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form := url.Values{"username": {"pending@example.com"}, "password": {"strongpass1"}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = do(e, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "Email not verified")
}

func TestAPI_VerificationTokenSingleUse(t *testing.T) {
	e := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{
		"email": "once@example.com", "password": "strongpass1", "role": "client",
	})
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	secureURL, _ := decodeJSON(t, rec)["secure_url"].(string)

	verifyPath := strings.TrimPrefix(secureURL, baseURL)
	rec = do(e, httptest.NewRequest(http.MethodGet, verifyPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, httptest.NewRequest(http.MethodGet, verifyPath, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid or expired verification token")
}
