package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/securedocs/fileshare/internal/api"
	"github.com/securedocs/fileshare/internal/core/ports"
	"github.com/securedocs/fileshare/internal/infrastructure/config"
	mongodb "github.com/securedocs/fileshare/internal/infrastructure/db/mongo"
	redisdb "github.com/securedocs/fileshare/internal/infrastructure/db/redis"
	"github.com/securedocs/fileshare/internal/infrastructure/mail"
	"github.com/securedocs/fileshare/internal/infrastructure/queue"
	"github.com/securedocs/fileshare/internal/infrastructure/storage"
	"github.com/securedocs/fileshare/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" || cfg.DownloadLinkSecret == "" {
		log.Fatal().Msg("JWT_SECRET and DOWNLOAD_LINK_SECRET must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index setup failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Blob storage ---
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("blob storage setup failed")
	}

	// --- Async mail delivery ---
	dispatcher := queue.NewMailDispatcher(0, mail.NewLogMailer(logger.With("mailer")), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, blobs, dispatcher, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (ports.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			Bucket:    cfg.Storage.MinioBucket,
		})
	default:
		return storage.NewFSStore(cfg.Storage.UploadDir)
	}
}
