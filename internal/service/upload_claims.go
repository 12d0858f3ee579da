package service

import (
	"context"
	"errors"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/redis/go-redis/v9"
)

// ErrUnclaimedUpload means a submitted document URL was not issued by the
// public upload endpoint for that slot, or was already used.
var ErrUnclaimedUpload = errors.New("document was not uploaded for this application")

const defaultUploadClaimTTL = 24 * time.Hour

// UploadClaims remembers which slot each public upload was made for, so a
// registration can only reference documents its applicant uploaded.
type UploadClaims struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewUploadClaims(rdb redis.Cmdable, ttl time.Duration) *UploadClaims {
	if ttl <= 0 {
		ttl = defaultUploadClaimTTL
	}
	return &UploadClaims{rdb: rdb, ttl: ttl}
}

// Grant records url as uploaded for slot.
func (c *UploadClaims) Grant(ctx context.Context, slot registration.DocumentSlot, url string) error {
	return c.rdb.Set(ctx, config.CacheKey.UploadClaimKey(url), string(slot), c.ttl).Err()
}

// Check reports whether url is an unused upload for slot.
func (c *UploadClaims) Check(ctx context.Context, slot registration.DocumentSlot, url string) error {
	got, err := c.rdb.Get(ctx, config.CacheKey.UploadClaimKey(url)).Result()
	return claimResult(slot, got, err)
}

// Claim consumes the grant for url.
func (c *UploadClaims) Claim(ctx context.Context, slot registration.DocumentSlot, url string) error {
	got, err := c.rdb.GetDel(ctx, config.CacheKey.UploadClaimKey(url)).Result()
	return claimResult(slot, got, err)
}

func claimResult(slot registration.DocumentSlot, got string, err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrUnclaimedUpload
	}
	if err != nil {
		return err
	}
	if got != string(slot) {
		return ErrUnclaimedUpload
	}
	return nil
}
