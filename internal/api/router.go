package api

import (
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securedocs/fileshare/internal/api/handler"
	"github.com/securedocs/fileshare/internal/api/middleware"
	"github.com/securedocs/fileshare/internal/core/domain"
	"github.com/securedocs/fileshare/internal/core/ports"
	"github.com/securedocs/fileshare/internal/core/service"
	"github.com/securedocs/fileshare/internal/infrastructure/config"
	mongodb "github.com/securedocs/fileshare/internal/infrastructure/db/mongo"
	redisdb "github.com/securedocs/fileshare/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	blobs ports.BlobStore,
	mail ports.MailEnqueuer,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes, 10)))
	e.Use(echoprometheus.NewMiddleware("fileshare"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	tokenRepo := mongodb.NewVerificationTokenRepository(db)
	fileRepo := mongodb.NewFileRepository(db)
	linkConsumer := redisdb.NewLinkConsumer(rdb)

	authService := service.NewAuthService(
		userRepo, tokenRepo, mail,
		cfg.JWTSecret, cfg.AccessTokenTTL, cfg.VerificationTokenTTL,
		cfg.BaseURL, log,
	)
	fileService := service.NewFileService(fileRepo, blobs, log)
	linkService := service.NewLinkService(
		fileRepo, blobs, linkConsumer,
		cfg.DownloadLinkSecret, cfg.DownloadLinkTTL, cfg.DownloadLinkSingleUse,
		cfg.BaseURL, log,
	)

	authHandler := handler.NewAuthHandler(authService)
	fileHandler := handler.NewFileHandler(fileService, linkService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/signup", authHandler.Signup)
	e.GET("/verify-email/:token", authHandler.VerifyEmail)
	e.POST("/login", authHandler.Login)

	// --- File routes ---
	e.POST("/upload", fileHandler.Upload,
		authMiddleware, middleware.RequireOperation(domain.OpUploadFile))
	e.GET("/files", fileHandler.List,
		authMiddleware, middleware.RequireOperation(domain.OpListFiles))
	e.GET("/download-file/:file_id", fileHandler.DownloadLink,
		authMiddleware, middleware.RequireOperation(domain.OpDownloadFile))

	// The signed token in the path is the credential for this route.
	e.GET("/download/:token", fileHandler.Download)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
