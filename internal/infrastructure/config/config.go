package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BaseURL is the externally reachable address used to build
	// verification and download URLs.
	BaseURL string `env:"BASE_URL, default=http://localhost:8080"`

	JWTSecret          string `env:"JWT_SECRET"`
	DownloadLinkSecret string `env:"DOWNLOAD_LINK_SECRET"`

	AccessTokenTTL        time.Duration `env:"ACCESS_TOKEN_TTL,         default=24h"`
	VerificationTokenTTL  time.Duration `env:"VERIFICATION_TOKEN_TTL,   default=24h"`
	DownloadLinkTTL       time.Duration `env:"DOWNLOAD_LINK_TTL,        default=10m"`
	DownloadLinkSingleUse bool          `env:"DOWNLOAD_LINK_SINGLE_USE, default=true"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES, default=52428800"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fileshare"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type StorageConfig struct {
	// Backend selects where file bytes live: "fs" or "minio".
	Backend   string `env:"STORAGE_BACKEND, default=fs"`
	UploadDir string `env:"UPLOAD_DIR,      default=./uploads"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
