package service

import (
	"context"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/model"
	ws "github.com/nbwschool/admission-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EventPublisher fans registration changes out to the admin live feed over
// Redis pub/sub. Publishing is best effort.
type EventPublisher struct {
	rdb redis.Cmdable
	log zerolog.Logger
}

func NewEventPublisher(rdb redis.Cmdable, log zerolog.Logger) *EventPublisher {
	return &EventPublisher{rdb: rdb, log: log.With().Str("component", "event_publisher").Logger()}
}

// Publish sends one event about reg.
func (p *EventPublisher) Publish(ctx context.Context, event ws.Event, reg *model.Registration, mutate func(*ws.RegistrationEvent)) {
	if p == nil || reg == nil {
		return
	}
	e := ws.RegistrationEvent{
		Event:          event,
		RegistrationID: reg.ID,
		ReferenceCode:  model.ReferenceCode(reg.ID),
		Name:           reg.FullName(),
		GradeLevel:     string(reg.GradeLevel),
		IsSpecialISM:   reg.IsSpecialISM,
		Status:         string(reg.Status),
		At:             time.Now().UTC(),
	}
	if mutate != nil {
		mutate(&e)
	}
	data, err := e.Encode()
	if err != nil {
		p.log.Error().Err(err).Msg("failed to encode registration event")
		return
	}
	if err := p.rdb.Publish(ctx, config.CacheKey.RegistrationEventsChannel(), data).Err(); err != nil {
		p.log.Warn().Err(err).Str("event", string(event)).Str("registration_id", reg.ID).Msg("failed to publish registration event")
	}
}

// BlobQueue hands stored objects to the blob cleanup worker.
type BlobQueue struct {
	rdb redis.Cmdable
	log zerolog.Logger
}

func NewBlobQueue(rdb redis.Cmdable, log zerolog.Logger) *BlobQueue {
	return &BlobQueue{rdb: rdb, log: log.With().Str("component", "blob_queue").Logger()}
}

// Enqueue schedules the deletion of every non-empty URL. Failures are
// logged; the blob is then orphaned.
func (q *BlobQueue) Enqueue(ctx context.Context, urls ...string) {
	if q == nil {
		return
	}
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := q.rdb.RPush(ctx, config.WorkerKey.BlobCleanupQueue, url).Err(); err != nil {
			q.log.Warn().Err(err).Str("url", url).Msg("failed to enqueue blob cleanup")
		}
	}
}
