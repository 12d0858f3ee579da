package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nbwschool/admission-backend/internal/media"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/storage"
	"github.com/rs/zerolog"
)

// Sentinel errors for document uploads.
var (
	ErrUnsupportedFileType = media.ErrUnsupportedType
	ErrFileTooLarge        = registration.ErrFileTooLarge
)

// Object name prefixes.
const (
	prefixRegistrations = "registrations"
	prefixSupplementary = "registrations/supplementary"
	prefixContent       = "content"
)

// DocumentService stores applicant documents and CMS images. Images are
// re-encoded as WebP; PDFs are stored unchanged. It is the Uploader used by
// the upload orchestrator.
type DocumentService struct {
	store    storage.Client
	cleanup  *BlobQueue
	claims   *UploadClaims
	maxBytes int64
	webp     media.Options
	now      func() time.Time
	log      zerolog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store storage.Client, cleanup *BlobQueue, claims *UploadClaims, maxBytes int64, webp media.Options, log zerolog.Logger) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = registration.DefaultMaxFileBytes
	}
	return &DocumentService{
		store:    store,
		cleanup:  cleanup,
		claims:   claims,
		maxBytes: maxBytes,
		webp:     webp,
		now:      time.Now,
		log:      log.With().Str("component", "document_service").Logger(),
	}
}

// MaxBytes is the per-file cap.
func (s *DocumentService) MaxBytes() int64 { return s.maxBytes }

// Upload stores a named-slot document and returns its URL.
func (s *DocumentService) Upload(ctx context.Context, slot registration.DocumentSlot, file registration.File) (string, error) {
	if _, err := registration.ParseDocumentSlot(string(slot)); err != nil {
		return "", err
	}
	return s.put(ctx, prefixRegistrations+"/"+string(slot), file, false)
}

// UploadForApplicant stores a document sent to the public upload endpoint
// and grants it to the next registration that names it for slot.
func (s *DocumentService) UploadForApplicant(ctx context.Context, slot registration.DocumentSlot, file registration.File) (string, error) {
	url, err := s.Upload(ctx, slot, file)
	if err != nil {
		return "", err
	}
	if err := s.claims.Grant(ctx, slot, url); err != nil {
		s.Discard(ctx, url)
		return "", fmt.Errorf("grant upload: %w", err)
	}
	return url, nil
}

// CheckUpload verifies that url is an unused public upload for slot.
func (s *DocumentService) CheckUpload(ctx context.Context, slot registration.DocumentSlot, url string) error {
	if err := s.ownsSlotObject(slot, url); err != nil {
		return err
	}
	return s.claims.Check(ctx, slot, url)
}

// ClaimUpload binds url to one registration; a second claim fails.
func (s *DocumentService) ClaimUpload(ctx context.Context, slot registration.DocumentSlot, url string) error {
	if err := s.ownsSlotObject(slot, url); err != nil {
		return err
	}
	return s.claims.Claim(ctx, slot, url)
}

// GrantUpload lets a later submit claim url for slot.
func (s *DocumentService) GrantUpload(ctx context.Context, slot registration.DocumentSlot, url string) {
	if err := s.claims.Grant(ctx, slot, url); err != nil {
		s.log.Warn().Err(err).Str("slot", string(slot)).Msg("failed to grant upload")
	}
}

func (s *DocumentService) ownsSlotObject(slot registration.DocumentSlot, url string) error {
	name, err := s.store.ObjectName(url)
	if err != nil {
		return ErrUnclaimedUpload
	}
	if !strings.HasPrefix(name, prefixRegistrations+"/"+string(slot)+"/") {
		return ErrUnclaimedUpload
	}
	return nil
}

// UploadSupplementary stores an extra document attached by an admin.
func (s *DocumentService) UploadSupplementary(ctx context.Context, file registration.File) (string, error) {
	return s.put(ctx, prefixSupplementary, file, false)
}

// UploadImage stores a CMS image. PDFs are rejected.
func (s *DocumentService) UploadImage(ctx context.Context, file registration.File) (string, error) {
	return s.put(ctx, prefixContent, file, true)
}

// Discard schedules deletion of stored objects.
func (s *DocumentService) Discard(ctx context.Context, urls ...string) {
	s.cleanup.Enqueue(ctx, urls...)
}

func (s *DocumentService) put(ctx context.Context, prefix string, file registration.File, imageOnly bool) (string, error) {
	if file.Open == nil {
		return "", registration.ErrNothingSelected
	}
	if file.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, file.Size, s.maxBytes)
	}

	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	contentType, err := media.DetectType(data[:min(len(data), 512)])
	if err != nil {
		return "", err
	}
	if imageOnly && !media.IsImage(contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}

	ext := "pdf"
	if media.IsImage(contentType) {
		if data, err = media.ConvertToWebP(data, s.webp); err != nil {
			return "", err
		}
		contentType, ext = media.TypeWebP, "webp"
	}

	name := storage.GenerateObjectName(prefix, ext, s.now())
	res, err := s.store.Upload(ctx, bytes.NewReader(data), name, contentType)
	if err != nil {
		return "", err
	}

	s.log.Debug().
		Str("object", res.ObjectName).
		Str("content_type", contentType).
		Int64("size", res.Size).
		Str("original_name", file.Name).
		Msg("document stored")
	return res.PublicURL, nil
}

var _ registration.Uploader = (*DocumentService)(nil)
