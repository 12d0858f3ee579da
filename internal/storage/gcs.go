package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSClient stores objects in a Google Cloud Storage bucket.
type GCSClient struct {
	client *gcs.Client
	bucket string
}

// NewGCSClient connects to GCS. With an empty credentialsPath the default
// application credentials are used.
func NewGCSClient(ctx context.Context, bucket, projectID, credentialsPath string) (*GCSClient, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET_NAME is required for gcs storage")
	}
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	if projectID != "" {
		opts = append(opts, option.WithQuotaProject(projectID))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSClient{client: client, bucket: bucket}, nil
}

func (g *GCSClient) baseURL() string {
	return gcsPublicHost + "/" + g.bucket
}

// Upload streams r into the bucket.
func (g *GCSClient) Upload(ctx context.Context, r io.Reader, objectName, contentType string) (*UploadResult, error) {
	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	size, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}

	return &UploadResult{
		ObjectName: objectName,
		PublicURL:  g.baseURL() + "/" + objectName,
		Size:       size,
	}, nil
}

// Delete removes objectName. A missing object is not an error.
func (g *GCSClient) Delete(ctx context.Context, objectName string) error {
	err := g.client.Bucket(g.bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	return nil
}

// Open returns a reader for objectName.
func (g *GCSClient) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucket).Object(objectName).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	return r, err
}

func (g *GCSClient) ObjectName(url string) (string, error) {
	return objectFromURL(g.baseURL(), url)
}

func (g *GCSClient) Close() error { return g.client.Close() }

var _ Client = (*GCSClient)(nil)
