package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrFileTooLarge  = errors.New("file too large")
	ErrFileExtension = errors.New("invalid file extension")
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedExtensions map[string]bool // empty allows any extension
	MaxSize           int64           // 0 disables the size check
}

// PosterConstraints bounds poster size and, when extensions are listed, the file type.
// The stored name keeps the original extension.
func PosterConstraints(maxSize int64, extensions []string) FileConstraints {
	c := FileConstraints{MaxSize: maxSize}
	if len(extensions) > 0 {
		c.AllowedExtensions = make(map[string]bool, len(extensions))
		for _, ext := range extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			c.AllowedExtensions[ext] = true
		}
	}
	return c
}

// ValidateFile checks an upload header against the constraints
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) error {
	if constraints.MaxSize > 0 && header.Size > constraints.MaxSize {
		return fmt.Errorf("%w: maximum size is %d bytes", ErrFileTooLarge, constraints.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(constraints.AllowedExtensions) > 0 && !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrFileExtension, ext)
	}

	return nil
}
