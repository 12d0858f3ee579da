package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalClient stores objects on the local filesystem. Files are served by
// the HTTP server under baseURL.
type LocalClient struct {
	basePath string
	baseURL  string
}

// NewLocalClient creates the base directory if needed.
func NewLocalClient(basePath, baseURL string) (*LocalClient, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &LocalClient{basePath: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// BasePath returns the directory objects are written to.
func (l *LocalClient) BasePath() string { return l.basePath }

func (l *LocalClient) fullPath(objectName string) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(objectName))
	if full != l.basePath && !strings.HasPrefix(full, l.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, objectName)
	}
	return full, nil
}

// Upload writes r to objectName. The file is written to a temp name and
// renamed so readers never see partial content.
func (l *LocalClient) Upload(ctx context.Context, r io.Reader, objectName, contentType string) (*UploadResult, error) {
	full, err := l.fullPath(objectName)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write data to file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &UploadResult{
		ObjectName: objectName,
		PublicURL:  l.baseURL + "/" + objectName,
		Size:       size,
	}, nil
}

// Delete removes objectName. A missing file is not an error.
func (l *LocalClient) Delete(_ context.Context, objectName string) error {
	full, err := l.fullPath(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file %s: %w", objectName, err)
	}
	l.cleanEmptyDirs(filepath.Dir(full))
	return nil
}

// cleanEmptyDirs removes empty parent directories up to basePath.
func (l *LocalClient) cleanEmptyDirs(dir string) {
	for dir != l.basePath && strings.HasPrefix(dir, l.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		_ = os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}

// Open returns a reader for objectName.
func (l *LocalClient) Open(_ context.Context, objectName string) (io.ReadCloser, error) {
	full, err := l.fullPath(objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (l *LocalClient) ObjectName(url string) (string, error) {
	return objectFromURL(l.baseURL, url)
}

func (l *LocalClient) Close() error { return nil }

var _ Client = (*LocalClient)(nil)
