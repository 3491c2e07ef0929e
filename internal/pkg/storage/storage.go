package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidPath  = errors.New("invalid file path")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage keeps generated documents such as report exports.
type FileStorage interface {
	// Upload stores file under path and returns the cleaned key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete is a no-op for missing files
	Delete(ctx context.Context, path string) error

	// GetURL returns where the stored file can be fetched
	GetURL(ctx context.Context, path string) (string, error)

	Exists(ctx context.Context, path string) (bool, error)
}
