// Package storage is the object store for applicant documents and CMS images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrForeignURL     = errors.New("url does not belong to this storage")
)

// Client is implemented by every storage backend.
type Client interface {
	Upload(ctx context.Context, r io.Reader, objectName, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, objectName string) error
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	// ObjectName maps a public URL produced by Upload back to its object name.
	ObjectName(url string) (string, error)
	Close() error
}

// UploadResult contains the result of an upload operation.
type UploadResult struct {
	ObjectName string `json:"object_name"`
	PublicURL  string `json:"url"`
	Size       int64  `json:"size"`
}

// GenerateObjectName returns a unique object name under prefix, partitioned
// by month, e.g. "registrations/2026/10/<uuid>.webp".
func GenerateObjectName(prefix, ext string, now time.Time) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(prefix, fmt.Sprintf("%04d/%02d", now.Year(), int(now.Month())), name)
}

// objectFromURL strips base from url and validates the remaining name.
func objectFromURL(base, url string) (string, error) {
	base = strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, base) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	name := strings.TrimPrefix(url, base)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != name {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return clean, nil
}
