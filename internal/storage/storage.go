package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/movieapi/internal/config"
)

var (
	ErrInvalidPath = errors.New("invalid storage path")
	ErrExists      = errors.New("file already exists")
	ErrNotFound    = errors.New("file not found")
)

// Storage defines the interface for the uploads file store
type Storage interface {
	// Save stores a file at the given path. It never overwrites an existing file.
	Save(ctx context.Context, path string, file io.Reader) error

	// URL returns a URL clients can fetch the file from, or ErrNotFound when nothing is stored at path
	URL(ctx context.Context, path string) (string, error)
}

// New builds the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "local", "":
		slog.Info("initializing local storage", "dir", c.UploadsDir)
		return NewLocalStorage(c.UploadsDir, "/uploads")
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(context.Background(), S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			PresignExpiry: c.S3PresignExpiry,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
}
