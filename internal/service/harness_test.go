package service

import (
	"testing"
	"time"

	"github.com/nbwschool/admission-backend/internal/media"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/rs/zerolog"
)

type harness struct {
	rdb           *testutil.FakeRedis
	store         *testutil.MemoryStore
	registrations *testutil.RegistrationStore
	settings      *testutil.AdmissionStore

	admission  *AdmissionService
	captcha    *CaptchaService
	documents  *DocumentService
	regService *RegistrationService
	submission *SubmissionService
	wizard     *WizardService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	h := &harness{
		rdb:           testutil.NewFakeRedis(),
		store:         testutil.NewMemoryStore(),
		registrations: testutil.NewRegistrationStore(),
		settings:      testutil.NewAdmissionStore(),
	}
	h.admission = NewAdmissionService(h.settings, 0, log)
	h.captcha = NewCaptchaService(h.rdb, 10*time.Minute)
	h.documents = NewDocumentService(h.store, NewBlobQueue(h.rdb, log), NewUploadClaims(h.rdb, 0), registration.DefaultMaxFileBytes, media.Options{Quality: 80}, log)
	h.regService = NewRegistrationService(h.registrations, h.documents, NewEventPublisher(h.rdb, log), log)
	h.submission = NewSubmissionService(h.admission, h.captcha, h.documents, h.regService, registration.DefaultMaxFileBytes, log)
	h.wizard = NewWizardService(h.rdb, time.Hour, h.admission, h.captcha, h.submission, log)
	return h
}

// issue returns a captcha id and its answer.
func (h *harness) issue(t *testing.T) (string, string) {
	t.Helper()
	c, err := h.captcha.Issue(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	return c.ID, c.Code
}

// wrong returns an answer that differs from code.
func wrong(code string) string {
	if code == "0000" {
		return "1111"
	}
	return "0000"
}
