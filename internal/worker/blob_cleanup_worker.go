package worker

import (
	"context"
	"errors"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	pollTimeout  = time.Second
	drainTimeout = 10 * time.Second
	errorBackoff = 2 * time.Second
)

// BlobDeleter is the part of the object store the worker needs.
type BlobDeleter interface {
	ObjectName(url string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// BlobCleanupWorker consumes blob_cleanup_queue and deletes each stored
// object once. Failed deletions are logged and dropped.
type BlobCleanupWorker struct {
	rdb   redis.Cmdable
	store BlobDeleter
	log   zerolog.Logger
}

// NewBlobCleanupWorker creates a new BlobCleanupWorker.
func NewBlobCleanupWorker(rdb redis.Cmdable, store BlobDeleter, log zerolog.Logger) *BlobCleanupWorker {
	return &BlobCleanupWorker{
		rdb:   rdb,
		store: store,
		log:   log.With().Str("component", "blob_cleanup_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine; it returns after ctx is
// cancelled and the queue has been drained.
func (w *BlobCleanupWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			n := w.drain(drainCtx)
			cancel()
			w.log.Info().Int("drained", n).Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *BlobCleanupWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or the poll timeout elapses.
	result, err := w.rdb.BLPop(ctx, pollTimeout, config.WorkerKey.BlobCleanupQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			sleep(ctx, errorBackoff)
		}
		return
	}
	if len(result) < 2 {
		return
	}
	w.delete(ctx, result[1])
}

// delete makes the single attempt for one URL.
func (w *BlobCleanupWorker) delete(ctx context.Context, url string) {
	name, err := w.store.ObjectName(url)
	if err != nil {
		w.log.Warn().Err(err).Str("url", url).Msg("skipping blob outside storage")
		return
	}
	if err := w.store.Delete(ctx, name); err != nil {
		w.log.Error().Err(err).Str("object", name).Msg("blob delete failed, orphaned")
		return
	}
	w.log.Debug().Str("object", name).Msg("blob deleted")
}

// drain processes the remaining queue before shutdown.
func (w *BlobCleanupWorker) drain(ctx context.Context) int {
	drained := 0
	for ctx.Err() == nil {
		url, err := w.rdb.LPop(ctx, config.WorkerKey.BlobCleanupQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				w.log.Error().Err(err).Msg("drain LPop error")
			}
			break
		}
		w.delete(ctx, url)
		drained++
	}
	return drained
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

var _ BlobDeleter = (storage.Client)(nil)
