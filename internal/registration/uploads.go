package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
)

// DocumentSlot names one of the three single-file documents.
type DocumentSlot string

const (
	SlotHouseRegistration DocumentSlot = "house_registration"
	SlotTranscript        DocumentSlot = "transcript"
	SlotPhoto             DocumentSlot = "photo"
)

// UploadOrder is the fixed order documents are uploaded in.
var UploadOrder = []DocumentSlot{SlotHouseRegistration, SlotTranscript, SlotPhoto}

// DefaultMaxFileBytes is the per-file size cap.
const DefaultMaxFileBytes int64 = 5 * 1024 * 1024

var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrUnknownSlot     = errors.New("unknown document slot")
	ErrNothingSelected = errors.New("no file selected")
)

// ParseDocumentSlot validates a slot name.
func ParseDocumentSlot(s string) (DocumentSlot, error) {
	slot := DocumentSlot(s)
	switch slot {
	case SlotHouseRegistration, SlotTranscript, SlotPhoto:
		return slot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// Label is the Thai display name of the document.
func (s DocumentSlot) Label() string {
	switch s {
	case SlotHouseRegistration:
		return "สำเนาทะเบียนบ้าน"
	case SlotTranscript:
		return "ใบแสดงผลการเรียน"
	case SlotPhoto:
		return "รูปถ่าย"
	}
	return string(s)
}

// URLField is the JSON field the slot's URL is stored under.
func (s DocumentSlot) URLField() string { return string(s) + "_url" }

// File is a document handle selected by the applicant.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart wraps an uploaded multipart file.
func FromMultipart(h *multipart.FileHeader) File {
	return File{
		Name: h.Filename,
		Size: h.Size,
		Open: func() (io.ReadCloser, error) { return h.Open() },
	}
}

// Uploader stores one document and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, slot DocumentSlot, file File) (string, error)
}

// UploadError reports which document failed to upload.
type UploadError struct {
	Slot DocumentSlot
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("อัปโหลด%sไม่สำเร็จ", e.Slot.Label())
}

func (e *UploadError) Unwrap() error { return e.Err }

// Progress records the URL of every slot that has been uploaded.
type Progress map[DocumentSlot]string

// ApplyTo writes the uploaded URLs into the form's named document fields.
func (p Progress) ApplyTo(f *Form) {
	for slot, url := range p {
		u := url
		f.SetDocumentURL(slot, &u)
	}
}

// UploadOrchestrator collects up to three documents and uploads them one at
// a time in UploadOrder.
type UploadOrchestrator struct {
	uploader Uploader
	maxBytes int64
	files    map[DocumentSlot]File
}

func NewUploadOrchestrator(uploader Uploader, maxBytes int64) *UploadOrchestrator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &UploadOrchestrator{
		uploader: uploader,
		maxBytes: maxBytes,
		files:    make(map[DocumentSlot]File, len(UploadOrder)),
	}
}

// Select attaches file to slot. An oversized file is rejected and the
// previous selection is kept.
func (o *UploadOrchestrator) Select(slot DocumentSlot, file File) error {
	if _, err := ParseDocumentSlot(string(slot)); err != nil {
		return err
	}
	if file.Open == nil {
		return ErrNothingSelected
	}
	if file.Size > o.maxBytes {
		return fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, slot.Label(), file.Size)
	}
	o.files[slot] = file
	return nil
}

// Clear removes the selection for slot.
func (o *UploadOrchestrator) Clear(slot DocumentSlot) {
	delete(o.files, slot)
}

// Selected returns the slots that currently hold a file, in upload order.
func (o *UploadOrchestrator) Selected() []DocumentSlot {
	var out []DocumentSlot
	for _, slot := range UploadOrder {
		if _, ok := o.files[slot]; ok {
			out = append(out, slot)
		}
	}
	return out
}

// Run uploads the selected files sequentially. Slots already present in done
// and not re-selected are skipped. It returns the merged progress, which on
// failure holds every slot that succeeded before the failing one.
func (o *UploadOrchestrator) Run(ctx context.Context, done Progress) (Progress, error) {
	progress := make(Progress, len(UploadOrder))
	maps.Copy(progress, done)

	for _, slot := range UploadOrder {
		file, ok := o.files[slot]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return progress, &UploadError{Slot: slot, Err: err}
		}
		url, err := o.uploader.Upload(ctx, slot, file)
		if err != nil {
			return progress, &UploadError{Slot: slot, Err: err}
		}
		progress[slot] = url
		delete(o.files, slot)
	}
	return progress, nil
}
