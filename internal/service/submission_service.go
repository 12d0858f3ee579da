package service

import (
	"context"
	"errors"
	"time"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/rs/zerolog"
)

// Submission is one attempt to turn a completed form into a registration.
type Submission struct {
	Form      registration.Form
	CaptchaID string
	Captcha   string
	// Files are uploaded in order before the record is created.
	Files map[registration.DocumentSlot]registration.File
	// Uploaded holds slots stored by an earlier attempt.
	Uploaded registration.Progress
}

// SubmissionResult carries whatever the attempt produced, even on failure.
type SubmissionResult struct {
	Registration *model.Registration
	Uploaded     registration.Progress
	// NewCaptcha replaces a challenge that failed verification.
	NewCaptcha *Captcha
}

// ApplicantDocuments stores submitted files and vouches for document URLs
// the client uploaded beforehand.
type ApplicantDocuments interface {
	registration.Uploader
	CheckUpload(ctx context.Context, slot registration.DocumentSlot, url string) error
	ClaimUpload(ctx context.Context, slot registration.DocumentSlot, url string) error
	GrantUpload(ctx context.Context, slot registration.DocumentSlot, url string)
}

// SubmissionService runs the final submit pipeline: admission gate, full
// validation, program rule, captcha, sequential uploads, create.
type SubmissionService struct {
	admission     *AdmissionService
	captcha       *CaptchaService
	documents     ApplicantDocuments
	registrations *RegistrationService
	maxBytes      int64
	now           func() time.Time
	log           zerolog.Logger
}

func NewSubmissionService(
	admission *AdmissionService,
	captcha *CaptchaService,
	documents ApplicantDocuments,
	registrations *RegistrationService,
	maxBytes int64,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		admission:     admission,
		captcha:       captcha,
		documents:     documents,
		registrations: registrations,
		maxBytes:      maxBytes,
		now:           time.Now,
		log:           log.With().Str("component", "submission_service").Logger(),
	}
}

// Precheck runs every gate that does not consume the captcha or touch
// storage.
func (s *SubmissionService) Precheck(ctx context.Context, f *registration.Form) error {
	level, err := registration.ParseGradeLevel(string(f.GradeLevel))
	if err != nil {
		return err
	}
	f.GradeLevel = level

	settings, err := s.admission.CheckAccepting(ctx, level)
	if err != nil {
		return err
	}
	if v := registration.ValidateAll(f, s.now()); v != nil {
		return v
	}
	return CheckProgram(settings, f.IsSpecialISM)
}

// Submit runs the whole pipeline. Oversized files are rejected before the
// captcha is checked so a retry keeps the current challenge.
func (s *SubmissionService) Submit(ctx context.Context, sub Submission) (*SubmissionResult, error) {
	res := &SubmissionResult{Uploaded: registration.Progress{}}
	for slot, url := range sub.Uploaded {
		res.Uploaded[slot] = url
	}

	form := sub.Form
	form.Trim()
	// Supplementary documents are attached by staff only.
	form.SupplementaryDocuments = nil
	if err := s.Precheck(ctx, &form); err != nil {
		return res, err
	}

	linked := s.linkedDocuments(&form, sub, res.Uploaded)
	for _, slot := range registration.UploadOrder {
		url, ok := linked[slot]
		if !ok {
			continue
		}
		if err := s.documents.CheckUpload(ctx, slot, url); err != nil {
			return res, unclaimedViolation(slot, err)
		}
	}

	orchestrator := registration.NewUploadOrchestrator(s.documents, s.maxBytes)
	for _, slot := range registration.UploadOrder {
		if file, ok := sub.Files[slot]; ok {
			if err := orchestrator.Select(slot, file); err != nil {
				return res, err
			}
		}
	}

	next, err := s.captcha.Verify(ctx, sub.CaptchaID, sub.Captcha)
	if err != nil {
		res.NewCaptcha = next
		return res, err
	}

	progress, err := orchestrator.Run(ctx, res.Uploaded)
	res.Uploaded = progress
	if err != nil {
		var upErr *registration.UploadError
		if errors.As(err, &upErr) {
			s.log.Warn().Err(upErr.Err).Str("slot", string(upErr.Slot)).Msg("document upload failed")
		}
		s.grantStored(ctx, sub.Uploaded, progress)
		return res, err
	}
	progress.ApplyTo(&form)

	claimed := make(map[registration.DocumentSlot]string, len(linked))
	release := func() {
		for slot, url := range claimed {
			s.documents.GrantUpload(ctx, slot, url)
		}
		s.grantStored(ctx, sub.Uploaded, progress)
	}
	for _, slot := range registration.UploadOrder {
		url, ok := linked[slot]
		if !ok {
			continue
		}
		if err := s.documents.ClaimUpload(ctx, slot, url); err != nil {
			release()
			return res, unclaimedViolation(slot, err)
		}
		claimed[slot] = url
	}

	reg := model.NewRegistration(form)
	if err := s.registrations.Create(ctx, reg); err != nil {
		release()
		return res, err
	}
	res.Registration = reg
	return res, nil
}

// linkedDocuments returns the document URLs the client put in the form that
// this attempt neither uploads nor uploaded earlier. Blank URLs are cleared.
func (s *SubmissionService) linkedDocuments(form *registration.Form, sub Submission, uploaded registration.Progress) map[registration.DocumentSlot]string {
	linked := map[registration.DocumentSlot]string{}
	for _, slot := range registration.UploadOrder {
		url := form.DocumentURL(slot)
		if url == nil {
			continue
		}
		if *url == "" {
			form.SetDocumentURL(slot, nil)
			continue
		}
		if _, selected := sub.Files[slot]; selected {
			continue
		}
		if uploaded[slot] == *url {
			continue
		}
		linked[slot] = *url
	}
	return linked
}

// grantStored lets a retry name the files this attempt stored as document URLs.
func (s *SubmissionService) grantStored(ctx context.Context, before, after registration.Progress) {
	for slot, url := range after {
		if before[slot] != url {
			s.documents.GrantUpload(ctx, slot, url)
		}
	}
}

func unclaimedViolation(slot registration.DocumentSlot, err error) error {
	if !errors.Is(err, ErrUnclaimedUpload) {
		return err
	}
	return &registration.Violation{
		Field:   slot.URLField(),
		Message: "ไม่พบไฟล์" + slot.Label() + "ที่อัปโหลด กรุณาอัปโหลดใหม่",
	}
}
