package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv string
	Port   string

	// Database (driver switch via ENV, default: mysql)
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBConnection   string // Optional: full DSN, overrides the DB_* parts
	DBQueryTimeout time.Duration

	// Uploads
	StorageDriver  string // "local" or "s3"
	UploadsDir     string
	UploadMaxSize  int64    // poster size limit
	RequestMaxSize int64    // whole body limit, above UploadMaxSize to leave room for the other fields
	UploadExts     []string // Optional: allowed poster extensions, empty allows any

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string // Optional: for S3-compatible services
	S3PresignExpiry time.Duration

	// HTTP
	CORSAllowedOrigins []string

	// Observability (optional)
	SentryDSN string
}

// formOverhead is the room a multipart body gets beyond the poster itself
const formOverhead = 1 << 20

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppEnv: envString("APP_ENV", "development"),
		Port:   envString("PORT", "3000"),

		// Database
		DBDriver:       envString("DB_DRIVER", "mysql"),
		DBHost:         envString("DB_HOST", "localhost"),
		DBPort:         envString("DB_PORT", ""),
		DBUser:         envString("DB_USER", ""),
		DBPassword:     envString("DB_PASSWORD", ""),
		DBName:         envString("DB_NAME", ""),
		DBConnection:   envString("DB_CONNECTION", ""),
		DBQueryTimeout: envDuration("DB_QUERY_TIMEOUT", 5*time.Second),

		// Uploads
		StorageDriver: envString("STORAGE_DRIVER", "local"),
		UploadsDir:    envString("UPLOADS_DIR", "uploads"),
		UploadMaxSize: envInt64("UPLOAD_MAX_SIZE", 10<<20), // 10MB
		UploadExts:    envList("UPLOAD_ALLOWED_EXTENSIONS", nil),

		// Storage
		S3Region:        envString("S3_REGION", ""),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),

		// HTTP
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	cfg.RequestMaxSize = envInt64("REQUEST_MAX_SIZE", cfg.UploadMaxSize+formOverhead)
	if cfg.RequestMaxSize <= cfg.UploadMaxSize {
		slog.Warn("REQUEST_MAX_SIZE must exceed UPLOAD_MAX_SIZE, using default",
			"request_max_size", cfg.RequestMaxSize, "upload_max_size", cfg.UploadMaxSize)
		cfg.RequestMaxSize = cfg.UploadMaxSize + formOverhead
	}

	if cfg.UsesS3() {
		validateS3(cfg)
	}

	return cfg
}

// validateS3 ensures the bucket settings exist before the S3 backend is built.
func validateS3(cfg *Config) {
	if cfg.S3Bucket == "" || cfg.S3Region == "" {
		slog.Error("s3 storage requires S3_BUCKET and S3_REGION",
			"hint", "set STORAGE_DRIVER=local to keep uploads on disk")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) UsesS3() bool {
	return c.StorageDriver == "s3"
}
