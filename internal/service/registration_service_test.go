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

func strPtr(v string) *string { return &v }

func seed(t *testing.T, h *harness) *model.Registration {
	t.Helper()
	reg := model.NewRegistration(testutil.ValidM1Form())
	require.NoError(t, h.regService.Create(t.Context(), reg))
	return reg
}

func TestRegistrationService_SearchReturnsProjection(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)

	found, err := h.regService.Search(t.Context(), reg.IDCardOrPassport)
	require.NoError(t, err)
	assert.Equal(t, reg.FullName(), found.Name)
	assert.Equal(t, model.StatusPending, found.Status)

	_, err = h.regService.Search(t.Context(), "0000000000000")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_UpdateFieldsKeepsNationalID(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)

	var patch model.RegistrationPatch
	require.NoError(t, json.Unmarshal([]byte(`{"first_name_th":"สมหญิง","id_card_or_passport":"9999999999999"}`), &patch))

	updated, err := h.regService.UpdateFields(t.Context(), 7, reg.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "สมหญิง", updated.FirstNameTH)
	assert.Equal(t, reg.IDCardOrPassport, updated.IDCardOrPassport)
}

func TestRegistrationService_GradeChangeClearsInactiveScores(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)
	require.NotNil(t, reg.GPAGrade4)

	level := registration.GradeM4
	status := registration.ResolveGrade(level).EducationStatuses[0].Value
	updated, err := h.regService.UpdateFields(t.Context(), 1, reg.ID, model.RegistrationPatch{
		GradeLevel:      &level,
		EducationStatus: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, registration.GradeM4, updated.GradeLevel)
	assert.Nil(t, updated.GPAGrade4)
	assert.Nil(t, updated.GPAGrade5)
}

func TestRegistrationService_UpdateFieldsRejectsSiblingOverflow(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)

	inSchool := 5
	_, err := h.regService.UpdateFields(t.Context(), 1, reg.ID, model.RegistrationPatch{SiblingsInSchool: &inSchool})
	var v *registration.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "siblings_in_school", v.Field)
}

func TestRegistrationService_UpdateStatusPublishesTransition(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)

	updated, err := h.regService.UpdateStatus(t.Context(), 3, reg.ID, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.Status)

	published := h.rdb.Published()
	require.Len(t, published, 2)
	var e ws.RegistrationEvent
	require.NoError(t, json.Unmarshal([]byte(published[1].Payload), &e))
	assert.Equal(t, ws.EventRegistrationStatusChanged, e.Event)
	assert.Equal(t, "pending", e.PreviousStatus)
	assert.Equal(t, 3, e.ActorID)

	admitted, err := h.regService.Admitted(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, admitted, 1)
	assert.Equal(t, model.ReferenceCode(reg.ID), admitted[0].ReferenceCode)

	_, err = h.regService.UpdateStatus(t.Context(), 3, "missing", model.StatusRejected)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_RemoveDocumentDropsEveryMatch(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)
	ctx := t.Context()

	a, b := testutil.MemoryBaseURL+"a.pdf", testutil.MemoryBaseURL+"b.pdf"
	for _, u := range []string{a, b, a} {
		_, err := h.registrations.AppendDocument(ctx, reg.ID, u)
		require.NoError(t, err)
	}

	updated, err := h.regService.RemoveDocument(ctx, reg.ID, a)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, updated.SupplementaryDocuments)
	assert.Equal(t, []string{a}, h.rdb.List(config.WorkerKey.BlobCleanupQueue))

	updated, err = h.regService.RemoveDocument(ctx, reg.ID, "https://files.test/unknown.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{b}, updated.SupplementaryDocuments)
	assert.Len(t, h.rdb.List(config.WorkerKey.BlobCleanupQueue), 1, "unknown URLs are not queued")
}

func TestRegistrationService_AddAndReplaceDocuments(t *testing.T) {
	h := newHarness(t)
	reg := seed(t, h)
	ctx := t.Context()

	withDoc, err := h.regService.AddDocument(ctx, reg.ID, testutil.File("extra.pdf", testutil.PDF))
	require.NoError(t, err)
	require.Len(t, withDoc.SupplementaryDocuments, 1)

	first, err := h.regService.ReplaceDocument(ctx, reg.ID, registration.SlotTranscript, testutil.File("t.pdf", testutil.PDF))
	require.NoError(t, err)
	firstURL := *first.TranscriptURL

	second, err := h.regService.ReplaceDocument(ctx, reg.ID, registration.SlotTranscript, testutil.File("t2.pdf", testutil.PDF))
	require.NoError(t, err)
	assert.NotEqual(t, firstURL, *second.TranscriptURL)
	assert.Equal(t, []string{firstURL}, h.rdb.List(config.WorkerKey.BlobCleanupQueue))

	cleared, err := h.regService.ClearDocument(ctx, reg.ID, registration.SlotTranscript)
	require.NoError(t, err)
	assert.Nil(t, cleared.TranscriptURL)
	assert.Len(t, h.rdb.List(config.WorkerKey.BlobCleanupQueue), 2)

	_, err = h.regService.AddDocument(ctx, reg.ID, testutil.File("notes.docx", []byte("PK\x03\x04 not a pdf")))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestRegistrationService_DeleteQueuesEveryDocument(t *testing.T) {
	h := newHarness(t)
	reg := model.NewRegistration(testutil.ValidM1Form())
	reg.PhotoURL = strPtr(testutil.MemoryBaseURL + "photo.webp")
	reg.SupplementaryDocuments = []string{testutil.MemoryBaseURL + "s.pdf"}
	require.NoError(t, h.regService.Create(t.Context(), reg))

	require.NoError(t, h.regService.Delete(t.Context(), 1, reg.ID))
	assert.ElementsMatch(t,
		[]string{testutil.MemoryBaseURL + "photo.webp", testutil.MemoryBaseURL + "s.pdf"},
		h.rdb.List(config.WorkerKey.BlobCleanupQueue))

	_, err := h.regService.Get(t.Context(), reg.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	assert.ErrorIs(t, h.regService.Delete(t.Context(), 1, reg.ID), ErrRegistrationNotFound)
}
