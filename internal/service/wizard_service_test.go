package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readyWizard starts a wizard, fills it with a valid form and walks it to
// the last step.
func readyWizard(t *testing.T, h *harness) *WizardView {
	t.Helper()
	ctx := t.Context()
	h.settings.Open(registration.GradeM1)

	view, err := h.wizard.Start(ctx, registration.GradeM1)
	require.NoError(t, err)
	require.NotNil(t, view.Captcha)
	captcha := view.Captcha

	patch, err := json.Marshal(testutil.ValidM1Form())
	require.NoError(t, err)
	view, err = h.wizard.Patch(ctx, view.Wizard.ID, patch)
	require.NoError(t, err)

	for view.Wizard.Step < registration.LastStep {
		step := view.Wizard.Step
		view, err = h.wizard.Next(ctx, view.Wizard.ID)
		require.NoError(t, err)
		require.Greater(t, view.Wizard.Step, step, "blocked: %v", view.Wizard.Errors)
	}
	view.Captcha = captcha
	return view
}

func TestWizardService_StartRequiresOpenAdmission(t *testing.T) {
	h := newHarness(t)
	_, err := h.wizard.Start(t.Context(), registration.GradeM4)
	assert.ErrorIs(t, err, ErrAdmissionClosed)
}

func TestWizardService_UnknownWizard(t *testing.T) {
	h := newHarness(t)
	_, err := h.wizard.Get(t.Context(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrWizardNotFound)
	_, err = h.wizard.Get(t.Context(), "9a4e7a0c-5f2f-4d4e-9b1a-1c2d3e4f5a6b")
	assert.ErrorIs(t, err, ErrWizardNotFound)
}

func TestWizardService_PersistsWithTTL(t *testing.T) {
	h := newHarness(t)
	view := readyWizard(t, h)

	key := config.CacheKey.WizardKey(view.Wizard.ID)
	_, ok := h.rdb.Value(key)
	require.True(t, ok)
	assert.Equal(t, time.Hour, h.rdb.ExpiryOf(key))

	got, err := h.wizard.Get(t.Context(), view.Wizard.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.LastStep, got.Wizard.Step)
	assert.Equal(t, "สมชาย", got.Wizard.Form.FirstNameTH)
}

func TestWizardService_SubmitSucceeds(t *testing.T) {
	h := newHarness(t)
	view := readyWizard(t, h)

	done, err := h.wizard.Submit(t.Context(), view.Wizard.ID, view.Captcha.Code, allDocuments())
	require.NoError(t, err)
	assert.Equal(t, registration.StateSucceeded, done.Wizard.State)
	require.NotEmpty(t, done.Wizard.RegistrationID)

	reg, err := h.regService.Get(t.Context(), done.Wizard.RegistrationID)
	require.NoError(t, err)
	assert.NotNil(t, reg.PhotoURL)

	_, locked := h.rdb.Value(config.CacheKey.WizardSubmitLockKey(view.Wizard.ID))
	assert.False(t, locked, "lock is released")

	_, err = h.wizard.Submit(t.Context(), view.Wizard.ID, view.Captcha.Code, nil)
	assert.ErrorIs(t, err, registration.ErrIllegalTransition, "succeeded is terminal")
}

func TestWizardService_SubmitWhileBusy(t *testing.T) {
	h := newHarness(t)
	view := readyWizard(t, h)
	h.rdb.SetNX(t.Context(), config.CacheKey.WizardSubmitLockKey(view.Wizard.ID), 1, time.Minute)

	_, err := h.wizard.Submit(t.Context(), view.Wizard.ID, view.Captcha.Code, nil)
	assert.ErrorIs(t, err, ErrWizardBusy)
	assert.Zero(t, h.registrations.Len())
}

func TestWizardService_SlowSubmitKeepsLock(t *testing.T) {
	h := newHarness(t)
	h.wizard.lockRefresh = 5 * time.Millisecond
	view := readyWizard(t, h)
	lockKey := config.CacheKey.WizardSubmitLockKey(view.Wizard.ID)

	photo := map[registration.DocumentSlot]registration.File{
		registration.SlotPhoto: testutil.File("photo.pdf", testutil.PDF),
	}
	h.store.OnUpload = func() {
		assert.Eventually(t, func() bool { return h.rdb.Expirations(lockKey) >= 2 }, time.Second, time.Millisecond)
		assert.Equal(t, submitLockTTL, h.rdb.ExpiryOf(lockKey))

		_, err := h.wizard.Submit(t.Context(), view.Wizard.ID, view.Captcha.Code, photo)
		assert.ErrorIs(t, err, ErrWizardBusy, "a live attempt is not treated as stale")
	}

	done, err := h.wizard.Submit(t.Context(), view.Wizard.ID, view.Captcha.Code, photo)
	require.NoError(t, err)
	assert.Equal(t, registration.StateSucceeded, done.Wizard.State)
	assert.Equal(t, 1, h.registrations.Len())
	assert.Len(t, h.store.Objects(), 1)

	_, locked := h.rdb.Value(lockKey)
	assert.False(t, locked)
}

func TestWizardService_RecoversStaleSubmission(t *testing.T) {
	h := newHarness(t)
	view := readyWizard(t, h)

	w := view.Wizard
	w.State = registration.StateSubmitting
	raw, err := json.Marshal(w)
	require.NoError(t, err)
	h.rdb.Set(t.Context(), config.CacheKey.WizardKey(w.ID), raw, time.Hour)

	done, err := h.wizard.Submit(t.Context(), w.ID, view.Captcha.Code, nil)
	require.NoError(t, err)
	assert.Equal(t, registration.StateSucceeded, done.Wizard.State)
}

func TestWizardService_CaptchaMismatchThenRetry(t *testing.T) {
	h := newHarness(t)
	view := readyWizard(t, h)

	failed, err := h.wizard.Submit(t.Context(), view.Wizard.ID, wrong(view.Captcha.Code), allDocuments())
	require.ErrorIs(t, err, ErrCaptchaMismatch)
	require.NotNil(t, failed)
	assert.Equal(t, registration.StateFailed, failed.Wizard.State)
	assert.Equal(t, UserMessage(ErrCaptchaMismatch), failed.Wizard.LastError)
	require.NotNil(t, failed.Captcha)
	assert.NotEqual(t, view.Captcha.ID, failed.Captcha.ID)

	done, err := h.wizard.Submit(t.Context(), view.Wizard.ID, failed.Captcha.Code, allDocuments())
	require.NoError(t, err)
	assert.Equal(t, registration.StateSucceeded, done.Wizard.State)
}

func TestWizardService_UploadFailureRecordsProgress(t *testing.T) {
	h := newHarness(t)
	view := readyWizard(t, h)
	h.store.FailUploadsAfter = 2

	failed, err := h.wizard.Submit(t.Context(), view.Wizard.ID, view.Captcha.Code, allDocuments())
	var upErr *registration.UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, registration.SlotPhoto, upErr.Slot)
	assert.Len(t, failed.Wizard.Uploaded, 2)
	assert.NotNil(t, failed.Wizard.Form.TranscriptURL)

	h.store.FailUploadsAfter = -1
	refreshed, err := h.wizard.RefreshCaptcha(t.Context(), view.Wizard.ID)
	require.NoError(t, err)

	photo := map[registration.DocumentSlot]registration.File{
		registration.SlotPhoto: testutil.File("photo.pdf", testutil.PDF),
	}
	done, err := h.wizard.Submit(t.Context(), view.Wizard.ID, refreshed.Captcha.Code, photo)
	require.NoError(t, err)
	assert.Len(t, h.store.Objects(), 3, "earlier uploads are reused")

	reg, err := h.regService.Get(t.Context(), done.Wizard.RegistrationID)
	require.NoError(t, err)
	assert.NotNil(t, reg.HouseRegistrationURL)
	assert.NotNil(t, reg.PhotoURL)
}

func TestWizardService_PreviousFromFirstStepIsIllegal(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	view, err := h.wizard.Start(t.Context(), registration.GradeM1)
	require.NoError(t, err)

	_, err = h.wizard.Previous(t.Context(), view.Wizard.ID)
	assert.ErrorIs(t, err, registration.ErrIllegalTransition)
}
