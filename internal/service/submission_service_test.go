package service

import (
	"encoding/json"
	"testing"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/testutil"
	ws "github.com/nbwschool/admission-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allDocuments() map[registration.DocumentSlot]registration.File {
	files := map[registration.DocumentSlot]registration.File{}
	for _, slot := range registration.UploadOrder {
		files[slot] = testutil.File(string(slot)+".pdf", testutil.PDF)
	}
	return files
}

func TestSubmissionService_CreatesPendingRegistration(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	id, code := h.issue(t)

	res, err := h.submission.Submit(t.Context(), Submission{
		Form:      testutil.ValidM1Form(),
		CaptchaID: id,
		Captcha:   code,
		Files:     allDocuments(),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Registration)

	reg, err := h.regService.Get(t.Context(), res.Registration.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reg.Status)
	for _, slot := range registration.UploadOrder {
		require.NotNil(t, reg.DocumentURL(slot), slot)
	}
	assert.Len(t, h.store.Objects(), 3)

	published := h.rdb.Published()
	require.Len(t, published, 1)
	assert.Equal(t, config.CacheKey.RegistrationEventsChannel(), published[0].Channel)
	var e ws.RegistrationEvent
	require.NoError(t, json.Unmarshal([]byte(published[0].Payload), &e))
	assert.Equal(t, ws.EventRegistrationCreated, e.Event)
	assert.Equal(t, reg.ID, e.RegistrationID)
}

func TestSubmissionService_ClosedAdmission(t *testing.T) {
	h := newHarness(t)
	id, code := h.issue(t)

	_, err := h.submission.Submit(t.Context(), Submission{Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code})
	assert.ErrorIs(t, err, ErrAdmissionClosed)
	assert.Zero(t, h.registrations.Len())

	_, stillThere := h.rdb.Value(config.CacheKey.CaptchaKey(id))
	assert.True(t, stillThere, "captcha is not consumed before the gates pass")
}

func TestSubmissionService_ProgramNotAllowed(t *testing.T) {
	h := newHarness(t)
	st := model.DefaultAdmissionSettings(registration.GradeM1)
	st.IsOpen, st.AllowISM = true, false
	require.NoError(t, h.settings.Upsert(t.Context(), &st))
	id, code := h.issue(t)

	form := testutil.ValidM1Form()
	form.IsSpecialISM = true
	_, err := h.submission.Submit(t.Context(), Submission{Form: form, CaptchaID: id, Captcha: code})
	assert.ErrorIs(t, err, ErrProgramNotAllowed)
}

func TestSubmissionService_ValidationFailure(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	id, code := h.issue(t)

	form := testutil.ValidM1Form()
	form.Phone = "12345"
	_, err := h.submission.Submit(t.Context(), Submission{Form: form, CaptchaID: id, Captcha: code})

	var v *registration.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "phone", v.Field)
}

func TestSubmissionService_CaptchaMismatch(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	id, code := h.issue(t)

	res, err := h.submission.Submit(t.Context(), Submission{
		Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: wrong(code), Files: allDocuments(),
	})
	require.ErrorIs(t, err, ErrCaptchaMismatch)
	require.NotNil(t, res.NewCaptcha)
	assert.Empty(t, h.store.Objects(), "nothing is uploaded before the captcha passes")
	assert.Zero(t, h.registrations.Len())
}

func TestSubmissionService_DuplicateNationalID(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)

	id, code := h.issue(t)
	_, err := h.submission.Submit(t.Context(), Submission{Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code})
	require.NoError(t, err)

	id, code = h.issue(t)
	_, err = h.submission.Submit(t.Context(), Submission{Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code})
	assert.ErrorIs(t, err, ErrDuplicateNationalID)
	assert.Equal(t, 1, h.registrations.Len())
}

func TestSubmissionService_UploadFailureKeepsProgress(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	h.store.FailUploadsAfter = 1

	id, code := h.issue(t)
	res, err := h.submission.Submit(t.Context(), Submission{
		Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code, Files: allDocuments(),
	})

	var upErr *registration.UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, registration.UploadOrder[1], upErr.Slot)
	assert.Len(t, res.Uploaded, 1)
	assert.Contains(t, res.Uploaded, registration.UploadOrder[0])
	assert.Zero(t, h.registrations.Len())

	// The retry skips the slot that already succeeded.
	h.store.FailUploadsAfter = -1
	files := allDocuments()
	delete(files, registration.UploadOrder[0])
	id, code = h.issue(t)
	res, err = h.submission.Submit(t.Context(), Submission{
		Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code, Files: files, Uploaded: res.Uploaded,
	})
	require.NoError(t, err)
	assert.Len(t, h.store.Objects(), 3)
	assert.NotNil(t, res.Registration.DocumentURL(registration.UploadOrder[0]))
}

func TestSubmissionService_OversizedFileKeepsCaptcha(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	id, code := h.issue(t)

	big := registration.File{Name: "huge.pdf", Size: registration.DefaultMaxFileBytes + 1, Open: testutil.File("x", testutil.PDF).Open}
	_, err := h.submission.Submit(t.Context(), Submission{
		Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code,
		Files: map[registration.DocumentSlot]registration.File{registration.SlotPhoto: big},
	})
	require.ErrorIs(t, err, ErrFileTooLarge)

	_, stillThere := h.rdb.Value(config.CacheKey.CaptchaKey(id))
	assert.True(t, stillThere)
}

func TestSubmissionService_RejectsDocumentURLsNotUploadedByApplicant(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)

	transcript, err := h.documents.UploadForApplicant(t.Context(), registration.SlotTranscript, testutil.File("t.pdf", testutil.PDF))
	require.NoError(t, err)
	image := testutil.MemoryBaseURL + "content/2026/10/hero.webp"

	cases := map[string]func(*registration.Form){
		"cms image":      func(f *registration.Form) { f.PhotoURL = strPtr(image) },
		"other slot":     func(f *registration.Form) { f.PhotoURL = strPtr(transcript) },
		"never uploaded": func(f *registration.Form) { f.PhotoURL = strPtr(testutil.MemoryBaseURL + "registrations/photo/2026/10/x.webp") },
		"other host":     func(f *registration.Form) { f.PhotoURL = strPtr("https://elsewhere.test/registrations/photo/x.webp") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			id, code := h.issue(t)
			form := testutil.ValidM1Form()
			mutate(&form)

			_, err := h.submission.Submit(t.Context(), Submission{Form: form, CaptchaID: id, Captcha: code})
			var v *registration.Violation
			require.ErrorAs(t, err, &v)
			assert.Equal(t, "photo_url", v.Field)
			assert.Zero(t, h.registrations.Len())

			_, stillThere := h.rdb.Value(config.CacheKey.CaptchaKey(id))
			assert.True(t, stillThere)
		})
	}
	_, granted := h.rdb.Value(config.CacheKey.UploadClaimKey(transcript))
	assert.True(t, granted, "a rejected attempt does not consume the upload")
}

func TestSubmissionService_ClaimsUploadedDocumentOnce(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)

	url, err := h.documents.UploadForApplicant(t.Context(), registration.SlotTranscript, testutil.File("t.pdf", testutil.PDF))
	require.NoError(t, err)

	form := testutil.ValidM1Form()
	form.TranscriptURL = strPtr(url)
	form.SupplementaryDocuments = []string{testutil.MemoryBaseURL + "content/2026/10/hero.webp"}
	id, code := h.issue(t)
	res, err := h.submission.Submit(t.Context(), Submission{Form: form, CaptchaID: id, Captcha: code})
	require.NoError(t, err)
	require.NotNil(t, res.Registration.TranscriptURL)
	assert.Equal(t, url, *res.Registration.TranscriptURL)
	assert.Empty(t, res.Registration.SupplementaryDocuments)

	other := testutil.ValidM1Form()
	other.IDCardOrPassport = "1103700012345"
	other.TranscriptURL = strPtr(url)
	id, code = h.issue(t)
	_, err = h.submission.Submit(t.Context(), Submission{Form: other, CaptchaID: id, Captcha: code})
	var v *registration.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "transcript_url", v.Field)

	require.NoError(t, h.regService.Delete(t.Context(), 1, res.Registration.ID))
	assert.Equal(t, []string{url}, h.rdb.List(config.WorkerKey.BlobCleanupQueue))
}

func TestSubmissionService_FailedCreateReleasesClaim(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)

	id, code := h.issue(t)
	_, err := h.submission.Submit(t.Context(), Submission{Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code})
	require.NoError(t, err)

	url, err := h.documents.UploadForApplicant(t.Context(), registration.SlotPhoto, testutil.File("p.pdf", testutil.PDF))
	require.NoError(t, err)
	form := testutil.ValidM1Form()
	form.PhotoURL = strPtr(url)
	id, code = h.issue(t)
	_, err = h.submission.Submit(t.Context(), Submission{Form: form, CaptchaID: id, Captcha: code})
	require.ErrorIs(t, err, ErrDuplicateNationalID)

	_, granted := h.rdb.Value(config.CacheKey.UploadClaimKey(url))
	assert.True(t, granted)
}

func TestSubmissionService_RetryCanNameFilesStoredByFailedAttempt(t *testing.T) {
	h := newHarness(t)
	h.settings.Open(registration.GradeM1)
	h.store.FailUploadsAfter = 1

	id, code := h.issue(t)
	res, err := h.submission.Submit(t.Context(), Submission{
		Form: testutil.ValidM1Form(), CaptchaID: id, Captcha: code, Files: allDocuments(),
	})
	var upErr *registration.UploadError
	require.ErrorAs(t, err, &upErr)
	first := registration.UploadOrder[0]
	stored := res.Uploaded[first]
	require.NotEmpty(t, stored)

	h.store.FailUploadsAfter = -1
	files := allDocuments()
	delete(files, first)
	form := testutil.ValidM1Form()
	form.SetDocumentURL(first, strPtr(stored))
	id, code = h.issue(t)
	res, err = h.submission.Submit(t.Context(), Submission{Form: form, CaptchaID: id, Captcha: code, Files: files})
	require.NoError(t, err)
	assert.Equal(t, stored, *res.Registration.DocumentURL(first))
	assert.Len(t, h.store.Objects(), 3)
}
