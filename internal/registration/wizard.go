package registration

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Step is a wizard page, 1 through LastStep.
type Step int

const (
	FirstStep Step = 1
	LastStep  Step = 6
)

// State is the submission state of a wizard.
//
//	editing ──submit──► submitting ──complete──► succeeded
//	   ▲                    │
//	   └──edit/previous── failed ◄──abort──┘
//
// failed may also submit again. succeeded is terminal.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Event drives a wizard transition.
type Event string

const (
	EventNext     Event = "next"
	EventPrevious Event = "previous"
	EventEdit     Event = "edit"
	EventSubmit   Event = "submit"
	EventComplete Event = "complete"
	EventAbort    Event = "abort"
)

var (
	ErrIllegalTransition = errors.New("illegal wizard transition")
	ErrInvalidPatch      = errors.New("invalid form patch")
)

// transitions lists the target state of every allowed (state, event) pair.
var transitions = map[State]map[Event]State{
	StateEditing: {
		EventNext:     StateEditing,
		EventPrevious: StateEditing,
		EventEdit:     StateEditing,
		EventSubmit:   StateSubmitting,
	},
	StateSubmitting: {
		EventComplete: StateSucceeded,
		EventAbort:    StateFailed,
	},
	StateFailed: {
		EventPrevious: StateEditing,
		EventEdit:     StateEditing,
		EventSubmit:   StateSubmitting,
	},
	// succeeded is terminal
}

// Target returns the state reached by firing e in s.
func Target(s State, e Event) (State, error) {
	to, ok := transitions[s][e]
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrIllegalTransition, e, s)
	}
	return to, nil
}

// Wizard is the persisted progress of one applicant through the form.
type Wizard struct {
	ID             string      `json:"id"`
	Step           Step        `json:"step"`
	State          State       `json:"state"`
	Form           Form        `json:"form"`
	Errors         FieldErrors `json:"errors"`
	LastError      string      `json:"last_error,omitempty"`
	CaptchaID      string      `json:"captcha_id,omitempty"`
	Uploaded       Progress    `json:"uploaded,omitempty"`
	RegistrationID string      `json:"registration_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewWizard starts a wizard on step 1 for the given grade level.
func NewWizard(id string, level GradeLevel, now time.Time) *Wizard {
	return &Wizard{
		ID:        id,
		Step:      FirstStep,
		State:     StateEditing,
		Form:      Form{GradeLevel: level},
		Errors:    FieldErrors{},
		Uploaded:  Progress{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *Wizard) fire(e Event, now time.Time) error {
	to, err := Target(w.State, e)
	if err != nil {
		return err
	}
	w.State = to
	w.UpdatedAt = now
	return nil
}

// Next validates the current step and advances when it passes. On failure
// the wizard stays put and Errors holds every failing field.
func (w *Wizard) Next(now time.Time) (bool, error) {
	if _, err := Target(w.State, EventNext); err != nil {
		return false, err
	}
	if w.Step >= LastStep {
		return false, fmt.Errorf("%w: next on step %d", ErrIllegalTransition, w.Step)
	}
	errs := ValidateStep(w.Step, &w.Form, now)
	if len(errs) > 0 {
		w.Errors = errs
		w.UpdatedAt = now
		return false, nil
	}
	if err := w.fire(EventNext, now); err != nil {
		return false, err
	}
	w.Step++
	w.Errors = FieldErrors{}
	return true, nil
}

// Previous moves back one step unconditionally and clears all errors. From
// failed it returns to editing on step 5.
func (w *Wizard) Previous(now time.Time) error {
	if _, err := Target(w.State, EventPrevious); err != nil {
		return err
	}
	if w.Step <= FirstStep {
		return fmt.Errorf("%w: previous on step %d", ErrIllegalTransition, w.Step)
	}
	if err := w.fire(EventPrevious, now); err != nil {
		return err
	}
	w.Step--
	w.Errors = FieldErrors{}
	w.LastError = ""
	return nil
}

// fixedFields cannot be changed through Apply.
var fixedFields = []string{
	"grade_level",
	"house_registration_url", "transcript_url", "photo_url",
	"supplementary_documents",
}

// Apply overlays a JSON object onto the form. Both address cascades are
// reconciled, the school subdistrict lock is re-derived and errors are
// cleared for every field the patch touched or reset.
func (w *Wizard) Apply(patch []byte, now time.Time) error {
	if _, err := Target(w.State, EventEdit); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	for _, k := range fixedFields {
		delete(keys, k)
	}

	old := w.Form
	next := cloneForm(old)
	if err := json.Unmarshal(patch, &next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	next.GradeLevel = old.GradeLevel
	next.HouseRegistrationURL = old.HouseRegistrationURL
	next.TranscriptURL = old.TranscriptURL
	next.PhotoURL = old.PhotoURL
	next.SupplementaryDocuments = old.SupplementaryDocuments

	touched := make([]string, 0, len(keys))
	for k := range keys {
		touched = append(touched, k)
	}

	home := Reconcile(old.HomeCascade(), next.HomeCascade(), has(keys, "district"), has(keys, "subdistrict"))
	touched = append(touched, resetFields(old.HomeCascade(), home, "district", "subdistrict")...)
	next.setHomeCascade(home)

	school := Reconcile(old.SchoolCascade(), next.SchoolCascade(), has(keys, "school_district"), has(keys, "school_subdistrict"))
	touched = append(touched, resetFields(old.SchoolCascade(), school, "school_district", "school_subdistrict")...)
	next.setSchoolCascade(school)
	if ApplySchoolLock(&next) {
		touched = append(touched, "school_subdistrict")
	}

	if err := w.fire(EventEdit, now); err != nil {
		return err
	}
	w.Form = next
	if w.Errors == nil {
		w.Errors = FieldErrors{}
	}
	w.Errors.Clear(touched...)
	w.LastError = ""
	return nil
}

// CheckSubmittable is the gate in front of submit: the wizard must be on the
// last step in a state that accepts submit, and the whole form must pass
// validation. It never changes state.
func (w *Wizard) CheckSubmittable(now time.Time) error {
	if _, err := Target(w.State, EventSubmit); err != nil {
		return err
	}
	if w.Step != LastStep {
		return fmt.Errorf("%w: submit on step %d", ErrIllegalTransition, w.Step)
	}
	if v := ValidateAll(&w.Form, now); v != nil {
		w.LastError = v.Message
		w.Errors = FieldErrors{v.Field: v.Message}
		return v
	}
	return nil
}

// BeginSubmit moves the wizard to submitting.
func (w *Wizard) BeginSubmit(now time.Time) error {
	if err := w.fire(EventSubmit, now); err != nil {
		return err
	}
	w.LastError = ""
	return nil
}

// Complete records the created registration and ends the wizard.
func (w *Wizard) Complete(registrationID string, now time.Time) error {
	if err := w.fire(EventComplete, now); err != nil {
		return err
	}
	w.RegistrationID = registrationID
	return nil
}

// Abort marks the submission failed and keeps the wizard on the last step.
func (w *Wizard) Abort(cause error, now time.Time) error {
	if err := w.fire(EventAbort, now); err != nil {
		return err
	}
	if cause != nil {
		w.LastError = cause.Error()
	}
	return nil
}

// RecordUploads merges upload progress into the wizard and the form.
func (w *Wizard) RecordUploads(p Progress) {
	if w.Uploaded == nil {
		w.Uploaded = Progress{}
	}
	for slot, url := range p {
		w.Uploaded[slot] = url
	}
	w.Uploaded.ApplyTo(&w.Form)
}

func has(keys map[string]json.RawMessage, k string) bool {
	_, ok := keys[k]
	return ok
}

// resetFields names the lower levels that moving from old to next emptied.
func resetFields(old, next Cascade, districtField, subdistrictField string) []string {
	var out []string
	if old.District != "" && next.District == "" {
		out = append(out, districtField)
	}
	if old.Subdistrict != "" && next.Subdistrict == "" {
		out = append(out, subdistrictField)
	}
	return out
}

func cloneForm(f Form) Form {
	out := f
	out.Siblings = clonePtr(f.Siblings)
	out.SiblingsInSchool = clonePtr(f.SiblingsInSchool)
	out.GPAGrade4 = clonePtr(f.GPAGrade4)
	out.GPAGrade5 = clonePtr(f.GPAGrade5)
	out.GPAScience = clonePtr(f.GPAScience)
	out.GPAMath = clonePtr(f.GPAMath)
	out.GPAEnglish = clonePtr(f.GPAEnglish)
	out.GPACumulative = clonePtr(f.GPACumulative)
	out.SupplementaryDocuments = slices.Clone(f.SupplementaryDocuments)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
