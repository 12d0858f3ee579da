package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AdminSessionKey returns the cache key holding one active admin login (by JWT ID).
func (r *CacheKeyStruct) AdminSessionKey(adminID int, jti string) string {
	return fmt.Sprintf("admin:%d:session:%s", adminID, jti)
}

// AdminSessionPattern matches every active session of one admin.
func (r *CacheKeyStruct) AdminSessionPattern(adminID int) string {
	return fmt.Sprintf("admin:%d:session:*", adminID)
}

// CaptchaKey returns the cache key for a numeric captcha challenge.
func (r *CacheKeyStruct) CaptchaKey(captchaID string) string {
	return fmt.Sprintf("captcha:%s", captchaID)
}

// WizardKey returns the cache key for a registration wizard's saved state.
func (r *CacheKeyStruct) WizardKey(wizardID string) string {
	return fmt.Sprintf("wizard:%s:state", wizardID)
}

// WizardSubmitLockKey returns the lock key held while a wizard is submitting.
func (r *CacheKeyStruct) WizardSubmitLockKey(wizardID string) string {
	return fmt.Sprintf("wizard:%s:submit_lock", wizardID)
}

// UploadClaimKey returns the key marking a public upload as not yet attached
// to a registration.
func (r *CacheKeyStruct) UploadClaimKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("upload:%s:claim", hex.EncodeToString(sum[:]))
}

// RegistrationEventsChannel is the Redis PubSub channel for the admin live feed.
func (r *CacheKeyStruct) RegistrationEventsChannel() string {
	return "registrations:events"
}

var CacheKey = NewCacheKeyStruct()
