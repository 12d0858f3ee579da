package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrCaptchaMismatch = errors.New("captcha does not match")
	ErrCaptchaExpired  = errors.New("captcha expired or unknown")
)

// Captcha is a numeric challenge shown to the applicant.
type Captcha struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// CaptchaService issues and verifies four-digit challenges stored in Redis.
type CaptchaService struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCaptchaService(rdb redis.Cmdable, ttl time.Duration) *CaptchaService {
	return &CaptchaService{rdb: rdb, ttl: ttl}
}

// Issue creates a new challenge.
func (s *CaptchaService) Issue(ctx context.Context) (*Captcha, error) {
	c := &Captcha{
		ID:   uuid.NewString(),
		Code: fmt.Sprintf("%04d", rand.IntN(10000)),
	}
	if err := s.rdb.Set(ctx, config.CacheKey.CaptchaKey(c.ID), c.Code, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store captcha: %w", err)
	}
	return c, nil
}

// Verify consumes the challenge id and compares answer by string equality.
// On any failure a fresh challenge is returned alongside the error.
func (s *CaptchaService) Verify(ctx context.Context, id, answer string) (*Captcha, error) {
	code, err := s.rdb.GetDel(ctx, config.CacheKey.CaptchaKey(id)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		err = ErrCaptchaExpired
	case err != nil:
		return nil, fmt.Errorf("load captcha: %w", err)
	case code != answer:
		err = ErrCaptchaMismatch
	default:
		return nil, nil
	}

	next, issueErr := s.Issue(ctx)
	if issueErr != nil {
		return nil, issueErr
	}
	return next, err
}
