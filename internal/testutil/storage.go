package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/nbwschool/admission-backend/internal/storage"
)

// MemoryBaseURL prefixes every URL handed out by MemoryStore.
const MemoryBaseURL = "https://files.test/"

var ErrStoreDown = errors.New("object store unavailable")

// MemoryStore is a storage.Client backed by a map.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	// FailUploadsAfter makes every upload after the first n fail; negative
	// disables it.
	FailUploadsAfter int
	uploads          int
	// FailDeletes makes Delete return ErrStoreDown.
	FailDeletes bool
	// OnUpload, when set, runs at the start of every Upload.
	OnUpload func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, FailUploadsAfter: -1}
}

func (m *MemoryStore) Upload(_ context.Context, r io.Reader, objectName, _ string) (*storage.UploadResult, error) {
	if m.OnUpload != nil {
		m.OnUpload()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploadsAfter >= 0 && m.uploads >= m.FailUploadsAfter {
		return nil, ErrStoreDown
	}
	m.uploads++
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[objectName] = data
	return &storage.UploadResult{ObjectName: objectName, PublicURL: MemoryBaseURL + objectName, Size: int64(len(data))}, nil
}

func (m *MemoryStore) Delete(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeletes {
		return ErrStoreDown
	}
	delete(m.objects, objectName)
	m.deleted = append(m.deleted, objectName)
	return nil
}

func (m *MemoryStore) Open(_ context.Context, objectName string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectName]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStore) ObjectName(url string) (string, error) {
	name, ok := strings.CutPrefix(url, MemoryBaseURL)
	if !ok || name == "" {
		return "", storage.ErrForeignURL
	}
	return name, nil
}

func (m *MemoryStore) Close() error { return nil }

// Objects returns the stored object names, sorted.
func (m *MemoryStore) Objects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Deleted returns the object names passed to Delete.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

var _ storage.Client = (*MemoryStore)(nil)
