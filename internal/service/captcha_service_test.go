package service

import (
	"testing"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCaptchaService_IssueStoresFourDigits(t *testing.T) {
	h := newHarness(t)
	c, err := h.captcha.Issue(t.Context())
	require.NoError(t, err)

	assert.Regexp(t, `^\d{4}$`, c.Code)
	stored, ok := h.rdb.Value(config.CacheKey.CaptchaKey(c.ID))
	require.True(t, ok)
	assert.Equal(t, c.Code, stored)
	assert.NotZero(t, h.rdb.ExpiryOf(config.CacheKey.CaptchaKey(c.ID)))
}

func TestCaptchaService_VerifyConsumesChallenge(t *testing.T) {
	h := newHarness(t)
	id, code := h.issue(t)

	next, err := h.captcha.Verify(t.Context(), id, code)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = h.captcha.Verify(t.Context(), id, code)
	assert.ErrorIs(t, err, ErrCaptchaExpired, "a challenge answers once")
}

func TestCaptchaService_MismatchIssuesNewChallenge(t *testing.T) {
	h := newHarness(t)
	id, code := h.issue(t)

	next, err := h.captcha.Verify(t.Context(), id, wrong(code))
	require.ErrorIs(t, err, ErrCaptchaMismatch)
	require.NotNil(t, next)
	assert.NotEqual(t, id, next.ID)

	_, stillThere := h.rdb.Value(config.CacheKey.CaptchaKey(id))
	assert.False(t, stillThere)

	_, err = h.captcha.Verify(t.Context(), next.ID, next.Code)
	assert.NoError(t, err)
}

func TestCaptchaService_OnlyExactAnswerPasses(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(t)
		id, code := h.issue(t)
		answer := rapid.StringMatching(`\d{4}`).Draw(rt, "answer")

		_, err := h.captcha.Verify(t.Context(), id, answer)
		if answer == code {
			assert.NoError(rt, err)
		} else {
			assert.ErrorIs(rt, err, ErrCaptchaMismatch)
		}
	})
}
