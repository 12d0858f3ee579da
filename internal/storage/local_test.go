package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalClient_UploadOpenDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewLocalClient(dir, "/uploads/")
	require.NoError(t, err)

	name := GenerateObjectName("registrations", ".PDF", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(name, "registrations/2026/10/"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	res, err := c.Upload(ctx, strings.NewReader("hello"), name, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Size)
	assert.Equal(t, "/uploads/"+name, res.PublicURL)

	obj, err := c.ObjectName(res.PublicURL)
	require.NoError(t, err)
	assert.Equal(t, name, obj)

	rc, err := c.Open(ctx, obj)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(body))

	require.NoError(t, c.Delete(ctx, obj))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(obj)))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, c.Delete(ctx, obj), "deleting twice is fine")

	_, err = c.Open(ctx, obj)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalClient_RejectsForeignURLs(t *testing.T) {
	c, err := NewLocalClient(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, url := range []string{
		"https://elsewhere.example/uploads/a.pdf",
		"/uploads/../etc/passwd",
		"/uploads/",
	} {
		_, err := c.ObjectName(url)
		assert.ErrorIs(t, err, ErrForeignURL, url)
	}

	assert.ErrorIs(t, c.Delete(context.Background(), "../outside.txt"), ErrForeignURL)
}
