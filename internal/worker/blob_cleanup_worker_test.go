package worker

import (
	"context"
	"testing"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobCleanupWorker_DeletesQueuedBlobsOnce(t *testing.T) {
	ctx := context.Background()
	rdb := testutil.NewFakeRedis()
	store := testutil.NewMemoryStore()
	w := NewBlobCleanupWorker(rdb, store, zerolog.Nop())

	rdb.RPush(ctx, config.WorkerKey.BlobCleanupQueue,
		testutil.MemoryBaseURL+"registrations/photo/a.webp",
		"https://elsewhere.example/b.pdf",
	)

	w.processNext(ctx)
	w.processNext(ctx)
	w.processNext(ctx)

	assert.Equal(t, []string{"registrations/photo/a.webp"}, store.Deleted())
	assert.Empty(t, rdb.List(config.WorkerKey.BlobCleanupQueue))
}

func TestBlobCleanupWorker_FailedDeleteIsDropped(t *testing.T) {
	ctx := context.Background()
	rdb := testutil.NewFakeRedis()
	store := testutil.NewMemoryStore()
	store.FailDeletes = true
	w := NewBlobCleanupWorker(rdb, store, zerolog.Nop())

	rdb.RPush(ctx, config.WorkerKey.BlobCleanupQueue, testutil.MemoryBaseURL+"x.pdf")
	w.processNext(ctx)

	assert.Empty(t, rdb.List(config.WorkerKey.BlobCleanupQueue), "no retry is queued")
}

func TestBlobCleanupWorker_DrainsOnShutdown(t *testing.T) {
	rdb := testutil.NewFakeRedis()
	store := testutil.NewMemoryStore()
	w := NewBlobCleanupWorker(rdb, store, zerolog.Nop())

	rdb.RPush(context.Background(), config.WorkerKey.BlobCleanupQueue,
		testutil.MemoryBaseURL+"a.pdf",
		testutil.MemoryBaseURL+"b.pdf",
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	require.Len(t, store.Deleted(), 2)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, store.Deleted())
}
