package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parseIntParam reads a positive integer path parameter, answering 400 when
// it is malformed.
func parseIntParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// gradeLevel validates a grade level from the closed enum.
func gradeLevel(c *gin.Context, raw string) (registration.GradeLevel, bool) {
	level, err := registration.ParseGradeLevel(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidGradeLevel,
			map[string]string{"grade_level": "must be one of m1 m4"})
		return "", false
	}
	return level, true
}

func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return page, perPage
}

// failSubmission maps an error from the submission pipeline. data is sent
// along so the client can render the new captcha or wizard state.
func failSubmission(c *gin.Context, log zerolog.Logger, err error, data interface{}) {
	var (
		violation *registration.Violation
		upload    *registration.UploadError
	)
	switch {
	case errors.As(err, &violation):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, violation.Message,
			map[string]string{violation.Field: violation.Message})
	case errors.Is(err, registration.ErrUnknownGradeLevel):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidGradeLevel)
	case errors.Is(err, service.ErrAdmissionClosed):
		response.FailWithData(c, http.StatusForbidden, response.ErrAdmissionClosed, "", data)
	case errors.Is(err, service.ErrProgramNotAllowed):
		response.FailWithData(c, http.StatusForbidden, response.ErrProgramNotAllowed, "", data)
	case errors.Is(err, service.ErrCaptchaMismatch), errors.Is(err, service.ErrCaptchaExpired):
		response.FailWithData(c, http.StatusBadRequest, response.ErrCaptchaInvalid, "", data)
	case errors.Is(err, service.ErrDuplicateNationalID):
		response.FailWithData(c, http.StatusConflict, response.ErrDuplicateNationalID, "", data)
	case errors.Is(err, service.ErrFileTooLarge):
		response.FailWithData(c, http.StatusBadRequest, response.ErrFileTooLarge, "", data)
	case errors.As(err, &upload):
		if errors.Is(upload.Err, service.ErrUnsupportedFileType) {
			response.FailWithData(c, http.StatusBadRequest, response.ErrUnsupportedFile, upload.Error(), data)
			return
		}
		log.Error().Err(err).Msg("document upload failed")
		response.FailWithData(c, http.StatusBadGateway, response.ErrUploadFailed, upload.Error(), data)
	case errors.Is(err, service.ErrWizardNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrWizardNotFound)
	case errors.Is(err, service.ErrWizardBusy):
		response.Fail(c, http.StatusConflict, response.ErrWizardBusy)
	case errors.Is(err, registration.ErrIllegalTransition):
		response.FailWithData(c, http.StatusConflict, response.ErrIllegalTransition, "", data)
	default:
		log.Error().Err(err).Msg("submission failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failDocument maps errors from storing a single uploaded document.
func failDocument(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrRegistrationNotFound)
	default:
		log.Error().Err(err).Msg("document storage failed")
		response.Fail(c, http.StatusBadGateway, response.ErrUploadFailed)
	}
}
