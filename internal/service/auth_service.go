package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("no active session")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int        `json:"user_id"`
	Role        model.Role `json:"role"`
	Permissions []string   `json:"permissions"`
}

// AuthService handles password hashing, admin JWTs and the server-side
// session kept in Redis for every issued token.
type AuthService struct {
	cfg *config.Config
	rdb redis.Cmdable
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb redis.Cmdable) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateAdminToken signs a JWT for admin and registers its session.
func (s *AuthService) GenerateAdminToken(ctx context.Context, admin *model.Admin) (string, time.Time, error) {
	jti := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(admin.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:      admin.ID,
		Role:        admin.Role,
		Permissions: admin.Role.Permissions(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.rdb.Set(ctx, config.CacheKey.AdminSessionKey(admin.ID, jti), now.Unix(), s.cfg.JWTExpiry).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateAdminSession checks that the token's session has not been revoked.
func (s *AuthService) ValidateAdminSession(ctx context.Context, claims *Claims) error {
	err := s.rdb.Get(ctx, config.CacheKey.AdminSessionKey(claims.UserID, claims.ID)).Err()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	return nil
}

// Logout revokes the session of one token.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.rdb.Del(ctx, config.CacheKey.AdminSessionKey(claims.UserID, claims.ID)).Err()
}

// RevokeAdminSessions removes every session of an admin, forcing a new login.
func (s *AuthService) RevokeAdminSessions(ctx context.Context, adminID int) error {
	iter := s.rdb.Scan(ctx, 0, config.CacheKey.AdminSessionPattern(adminID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}
