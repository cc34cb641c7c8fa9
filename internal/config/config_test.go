package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_CONNECTION", "DB_QUERY_TIMEOUT", "STORAGE_DRIVER", "UPLOADS_DIR", "UPLOAD_MAX_SIZE", "REQUEST_MAX_SIZE", "UPLOAD_ALLOWED_EXTENSIONS",
		"S3_PRESIGN_EXPIRY", "CORS_ALLOWED_ORIGINS", "SENTRY_DSN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5*time.Second, cfg.DBQueryTimeout)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.False(t, cfg.UsesS3())
	assert.Equal(t, "uploads", cfg.UploadsDir)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxSize)
	assert.Equal(t, int64(11<<20), cfg.RequestMaxSize)
	assert.Empty(t, cfg.UploadExts)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_USER", "films")
	t.Setenv("DB_QUERY_TIMEOUT", "250ms")
	t.Setenv("UPLOAD_MAX_SIZE", "2048")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "jpg,png")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, "films", cfg.DBUser)
	assert.Equal(t, 250*time.Millisecond, cfg.DBQueryTimeout)
	assert.Equal(t, int64(2048), cfg.UploadMaxSize)
	assert.Equal(t, []string{"jpg", "png"}, cfg.UploadExts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_QUERY_TIMEOUT", "soon")
	t.Setenv("UPLOAD_MAX_SIZE", "-1")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.DBQueryTimeout)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxSize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_RequestMaxSizeExceedsPosterLimit(t *testing.T) {
	t.Setenv("UPLOAD_MAX_SIZE", "4096")
	t.Setenv("REQUEST_MAX_SIZE", "")
	assert.Equal(t, int64(4096+1<<20), Load().RequestMaxSize)

	t.Setenv("REQUEST_MAX_SIZE", "8192")
	assert.Equal(t, int64(8192), Load().RequestMaxSize)

	// A body limit at or below the poster limit would hide the poster check
	t.Setenv("REQUEST_MAX_SIZE", "4096")
	assert.Equal(t, int64(4096+1<<20), Load().RequestMaxSize)
}
