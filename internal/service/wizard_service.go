package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	ErrWizardNotFound = errors.New("wizard not found or expired")
	ErrWizardBusy     = errors.New("wizard is already submitting")
	errStaleSubmit    = errors.New("previous submission was interrupted")
)

const submitLockTTL = 2 * time.Minute

// WizardView is what the client renders for a wizard.
type WizardView struct {
	Wizard  *registration.Wizard `json:"wizard"`
	Layout  registration.Layout  `json:"layout"`
	Captcha *Captcha             `json:"captcha,omitempty"`
}

// WizardService keeps wizard state in Redis between requests.
type WizardService struct {
	rdb         redis.Cmdable
	ttl         time.Duration
	admission   *AdmissionService
	captcha     *CaptchaService
	submission  *SubmissionService
	// lockRefresh is how often a running submit extends its lock.
	lockRefresh time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

func NewWizardService(
	rdb redis.Cmdable,
	ttl time.Duration,
	admission *AdmissionService,
	captcha *CaptchaService,
	submission *SubmissionService,
	log zerolog.Logger,
) *WizardService {
	return &WizardService{
		rdb:         rdb,
		ttl:         ttl,
		admission:   admission,
		captcha:     captcha,
		submission:  submission,
		lockRefresh: submitLockTTL / 3,
		now:         time.Now,
		log:         log.With().Str("component", "wizard_service").Logger(),
	}
}

// Start opens a wizard for an accepting grade level and issues its first
// captcha.
func (s *WizardService) Start(ctx context.Context, level registration.GradeLevel) (*WizardView, error) {
	if _, err := s.admission.CheckAccepting(ctx, level); err != nil {
		return nil, err
	}
	w := registration.NewWizard(uuid.NewString(), level, s.now())
	c, err := s.captcha.Issue(ctx)
	if err != nil {
		return nil, err
	}
	w.CaptchaID = c.ID
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return s.view(ctx, w, c)
}

// Get returns the current state of a wizard.
func (s *WizardService) Get(ctx context.Context, id string) (*WizardView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w, nil)
}

// Patch overlays field values onto the form.
func (s *WizardService) Patch(ctx context.Context, id string, patch []byte) (*WizardView, error) {
	return s.mutate(ctx, id, func(w *registration.Wizard) error {
		return w.Apply(patch, s.now())
	})
}

// Next validates the current step and advances when it passes.
func (s *WizardService) Next(ctx context.Context, id string) (*WizardView, error) {
	return s.mutate(ctx, id, func(w *registration.Wizard) error {
		_, err := w.Next(s.now())
		return err
	})
}

// Previous moves back one step.
func (s *WizardService) Previous(ctx context.Context, id string) (*WizardView, error) {
	return s.mutate(ctx, id, func(w *registration.Wizard) error {
		return w.Previous(s.now())
	})
}

// RefreshCaptcha replaces the wizard's challenge.
func (s *WizardService) RefreshCaptcha(ctx context.Context, id string) (*WizardView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.captcha.Issue(ctx)
	if err != nil {
		return nil, err
	}
	w.CaptchaID = c.ID
	w.UpdatedAt = s.now()
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return s.view(ctx, w, c)
}

// keepLock extends lockKey every lockRefresh until stop is called.
func (s *WizardService) keepLock(ctx context.Context, lockKey string) (stop func()) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.lockRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.rdb.Expire(ctx, lockKey, submitLockTTL).Err(); err != nil && ctx.Err() == nil {
					s.log.Warn().Err(err).Str("lock", lockKey).Msg("failed to extend submit lock")
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// Submit runs the submission pipeline for a wizard on its last step. The
// returned view is valid on failure too; it holds the error, the recorded
// upload progress and, after a captcha mismatch, the new challenge.
func (s *WizardService) Submit(ctx context.Context, id, answer string, files map[registration.DocumentSlot]registration.File) (*WizardView, error) {
	lockKey := config.CacheKey.WizardSubmitLockKey(id)
	ok, err := s.rdb.SetNX(ctx, lockKey, s.now().Unix(), submitLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !ok {
		return nil, ErrWizardBusy
	}
	stopRefresh := s.keepLock(ctx, lockKey)
	defer func() {
		stopRefresh()
		s.rdb.Del(context.WithoutCancel(ctx), lockKey)
	}()

	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.State == registration.StateSubmitting {
		// Holding the lock means no attempt is running.
		if err := w.Abort(errStaleSubmit, s.now()); err != nil {
			return nil, err
		}
	}

	if err := w.CheckSubmittable(s.now()); err != nil {
		var v *registration.Violation
		if errors.As(err, &v) {
			if saveErr := s.save(ctx, w); saveErr != nil {
				return nil, saveErr
			}
			view, viewErr := s.view(ctx, w, nil)
			if viewErr != nil {
				return nil, viewErr
			}
			return view, err
		}
		return nil, err
	}

	if err := w.BeginSubmit(s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	res, subErr := s.submission.Submit(ctx, Submission{
		Form:      w.Form,
		CaptchaID: w.CaptchaID,
		Captcha:   answer,
		Files:     files,
		Uploaded:  w.Uploaded,
	})
	w.RecordUploads(res.Uploaded)

	if subErr != nil {
		if res.NewCaptcha != nil {
			w.CaptchaID = res.NewCaptcha.ID
		}
		if err := w.Abort(errors.New(UserMessage(subErr)), s.now()); err != nil {
			return nil, err
		}
		if err := s.save(ctx, w); err != nil {
			return nil, err
		}
		view, err := s.view(ctx, w, res.NewCaptcha)
		if err != nil {
			return nil, err
		}
		return view, subErr
	}

	if err := w.Complete(res.Registration.ID, s.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		s.log.Error().Err(err).Str("wizard_id", id).Msg("failed to persist completed wizard")
	}
	return s.view(ctx, w, nil)
}

func (s *WizardService) mutate(ctx context.Context, id string, fn func(*registration.Wizard) error) (*WizardView, error) {
	w, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return s.view(ctx, w, nil)
}

func (s *WizardService) view(ctx context.Context, w *registration.Wizard, c *Captcha) (*WizardView, error) {
	settings, err := s.admission.GetByGrade(ctx, w.Form.GradeLevel)
	if err != nil {
		return nil, err
	}
	return &WizardView{
		Wizard:  w,
		Layout:  registration.BuildLayout(&w.Form, settings.AllowISM, settings.AllowRegular),
		Captcha: c,
	}, nil
}

func (s *WizardService) load(ctx context.Context, id string) (*registration.Wizard, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrWizardNotFound
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.WizardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard: %w", err)
	}
	var w registration.Wizard
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode wizard: %w", err)
	}
	if w.Errors == nil {
		w.Errors = registration.FieldErrors{}
	}
	return &w, nil
}

func (s *WizardService) save(ctx context.Context, w *registration.Wizard) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode wizard: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.WizardKey(w.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save wizard: %w", err)
	}
	return nil
}

// UserMessage is the Thai text shown to applicants for a submission error.
func UserMessage(err error) string {
	var (
		v      *registration.Violation
		upload *registration.UploadError
	)
	switch {
	case errors.As(err, &v):
		return v.Message
	case errors.As(err, &upload):
		return upload.Error()
	case errors.Is(err, ErrCaptchaMismatch), errors.Is(err, ErrCaptchaExpired):
		return "รหัสยืนยันไม่ถูกต้อง กรุณากรอกรหัสใหม่"
	case errors.Is(err, ErrAdmissionClosed):
		return "ขณะนี้ไม่อยู่ในช่วงเวลารับสมัคร"
	case errors.Is(err, ErrProgramNotAllowed):
		return "ประเภทห้องเรียนที่เลือกไม่เปิดรับสมัคร"
	case errors.Is(err, ErrDuplicateNationalID):
		return "เลขประจำตัวประชาชนนี้ได้ลงทะเบียนสมัครแล้ว"
	case errors.Is(err, ErrFileTooLarge):
		return "ไฟล์มีขนาดเกิน 5 MB"
	}
	return "เกิดข้อผิดพลาดในการส่งใบสมัคร กรุณาลองใหม่อีกครั้ง"
}
