package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/handler"
	"github.com/nbwschool/admission-backend/internal/media"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/nbwschool/admission-backend/internal/validator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type app struct {
	engine        *gin.Engine
	rdb           *testutil.FakeRedis
	settings      *testutil.AdmissionStore
	registrations *testutil.RegistrationStore
	admins        *service.AdminService
	captcha       *service.CaptchaService
}

func newApp(t *testing.T) *app {
	t.Helper()
	validator.Setup()
	log := zerolog.Nop()
	cfg := &config.Config{
		GinMode:          gin.TestMode,
		JWTSecret:        "router-test-secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       bcrypt.MinCost,
		StorageType:      config.StorageLocal,
		StorageLocalPath: t.TempDir(),
		StoragePublicURL: "/uploads",
	}

	a := &app{
		rdb:           testutil.NewFakeRedis(),
		settings:      testutil.NewAdmissionStore(),
		registrations: testutil.NewRegistrationStore(),
	}
	store := testutil.NewMemoryStore()

	authService := service.NewAuthService(cfg, a.rdb)
	a.admins = service.NewAdminService(testutil.NewAdminStore(), authService)
	admission := service.NewAdmissionService(a.settings, 0, log)
	a.captcha = service.NewCaptchaService(a.rdb, time.Minute)
	documents := service.NewDocumentService(store, service.NewBlobQueue(a.rdb, log), service.NewUploadClaims(a.rdb, 0), registration.DefaultMaxFileBytes, media.Options{}, log)
	registrations := service.NewRegistrationService(a.registrations, documents, service.NewEventPublisher(a.rdb, log), log)
	submission := service.NewSubmissionService(admission, a.captcha, documents, registrations, registration.DefaultMaxFileBytes, log)
	wizards := service.NewWizardService(a.rdb, time.Hour, admission, a.captcha, submission, log)
	dashboard := service.NewDashboardService(&testutil.DashboardStore{Registrations: a.registrations}, admission)

	handlers := &Handlers{
		Auth:              handler.NewAuthHandler(authService, a.admins, log),
		Registration:      handler.NewRegistrationHandler(registrations, submission, log),
		RegistrationAdmin: handler.NewRegistrationAdminHandler(registrations, service.NewExportService(a.registrations), log),
		Wizard:            handler.NewWizardHandler(wizards, log),
		Admission:         handler.NewAdmissionHandler(admission, a.captcha, log),
		Address:           handler.NewAddressHandler(),
		Media:             handler.NewMediaHandler(documents, log),
		Content: handler.NewContentHandler(
			service.NewNewsService(testutil.NewNewsStore(), documents),
			service.NewHeroImageService(testutil.NewHeroImageStore(), documents),
			documents, log),
		Dashboard: handler.NewDashboardHandler(dashboard, log),
		AdminUser: handler.NewAdminUserHandler(a.admins, log),
		LiveFeed:  handler.NewLiveFeedHandler(nil, log, nil),
		System:    handler.NewSystemHandler(pinger{}, a.rdb, log),
	}
	a.engine = SetupRouter(authService, handlers, cfg, Options{Log: log})
	return a
}

func (a *app) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(t, req)
}

func (a *app) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// registerBody is a JSON registration with a fresh, correctly answered captcha.
func (a *app) registerBody(t *testing.T, form registration.Form) map[string]any {
	t.Helper()
	c, err := a.captcha.Issue(t.Context())
	require.NoError(t, err)
	raw, err := json.Marshal(form)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	body["captcha_id"] = c.ID
	body["captcha"] = c.Code
	return body
}

func (a *app) login(t *testing.T, role model.Role) string {
	t.Helper()
	email := string(role) + "@school.ac.th"
	_, err := a.admins.Create(t.Context(), model.CreateAdminRequest{Email: email, Name: "Admin", Password: "password123", Role: role})
	require.NoError(t, err)

	w, env := a.do(t, http.MethodPost, "/api/v1/auth/admin/login", map[string]string{"email": email, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res model.AdminLoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	w, _ := a.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_CreatesPendingRegistration(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)

	w, env := a.do(t, http.MethodPost, "/api/v1/register", a.registerBody(t, testutil.ValidM1Form()), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID            string `json:"id"`
		ReferenceCode string `json:"reference_code"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, model.ReferenceCode(created.ID), created.ReferenceCode)

	w, env = a.do(t, http.MethodGet, "/api/v1/registration/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"pending"`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w, env = a.do(t, http.MethodGet, "/api/v1/registration/search?idCard=1609900123456", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "สมชาย")
}

func TestRegister_Duplicate(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)

	w, _ := a.do(t, http.MethodPost, "/api/v1/register", a.registerBody(t, testutil.ValidM1Form()), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := a.do(t, http.MethodPost, "/api/v1/register", a.registerBody(t, testutil.ValidM1Form()), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_NATIONAL_ID", env.Error.Code)
	assert.Equal(t, 1, a.registrations.Len())
}

func TestRegister_Closed(t *testing.T) {
	a := newApp(t)

	w, env := a.do(t, http.MethodPost, "/api/v1/register", a.registerBody(t, testutil.ValidM1Form()), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ADMISSION_CLOSED", env.Error.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)

	form := testutil.ValidM1Form()
	form.FirstNameTH = ""
	w, env := a.do(t, http.MethodPost, "/api/v1/register", a.registerBody(t, form), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "first_name_th")

	body := a.registerBody(t, testutil.ValidM1Form())
	delete(body, "captcha")
	w, env = a.do(t, http.MethodPost, "/api/v1/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, "captcha")
}

func TestRegister_CaptchaMismatchReturnsNewChallenge(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)

	body := a.registerBody(t, testutil.ValidM1Form())
	if body["captcha"] == "0000" {
		body["captcha"] = "1111"
	} else {
		body["captcha"] = "0000"
	}
	w, env := a.do(t, http.MethodPost, "/api/v1/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CAPTCHA_INVALID", env.Error.Code)

	var data struct {
		Captcha *service.Captcha `json:"captcha"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.Captcha)
	assert.NotEqual(t, body["captcha_id"], data.Captcha.ID)
	assert.Zero(t, a.registrations.Len())
}

func TestSearch(t *testing.T) {
	a := newApp(t)

	w, env := a.do(t, http.MethodGet, "/api/v1/registration/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NATIONAL_ID_REQUIRED", env.Error.Code)

	w, env = a.do(t, http.MethodGet, "/api/v1/registration/search?idCard=1111111111111", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REGISTRATION_NOT_FOUND", env.Error.Code)
}

func TestSubmitMultipart_UploadsDocuments(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)

	payload, err := json.Marshal(a.registerBody(t, testutil.ValidM1Form()))
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("payload", string(payload)))
	fw, err := mw.CreateFormFile(string(registration.SlotTranscript), "transcript.pdf")
	require.NoError(t, err)
	_, err = fw.Write(testutil.PDF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := a.serve(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.Registration
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotNil(t, created.TranscriptURL)
	assert.Nil(t, created.PhotoURL)
}

func (a *app) uploadDocument(t *testing.T, slot registration.DocumentSlot) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("slot", string(slot)))
	fw, err := mw.CreateFormFile("file", string(slot)+".pdf")
	require.NoError(t, err)
	_, err = fw.Write(testutil.PDF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := a.serve(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.URL
}

func TestRegister_RejectsForeignDocumentURL(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)
	transcript := a.uploadDocument(t, registration.SlotTranscript)

	for _, url := range []string{
		testutil.MemoryBaseURL + "content/2026/10/hero.webp",
		testutil.MemoryBaseURL + "registrations/photo/2026/10/someone-else.webp",
		transcript,
	} {
		body := a.registerBody(t, testutil.ValidM1Form())
		body["photo_url"] = url
		w, env := a.do(t, http.MethodPost, "/api/v1/register", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Contains(t, env.Error.Fields, "photo_url")
	}
	assert.Zero(t, a.registrations.Len())

	body := a.registerBody(t, testutil.ValidM1Form())
	body["transcript_url"] = transcript
	body["supplementary_documents"] = []string{testutil.MemoryBaseURL + "content/2026/10/hero.webp"}
	w, _ := a.do(t, http.MethodPost, "/api/v1/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	reg, err := a.registrations.GetByNationalID(t.Context(), "1609900123456")
	require.NoError(t, err)
	require.NotNil(t, reg.TranscriptURL)
	assert.Equal(t, transcript, *reg.TranscriptURL)
	assert.Empty(t, reg.SupplementaryDocuments)
}

func TestAdminPatch_IgnoresNationalID(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)
	token := a.login(t, model.RoleStaff)

	reg := model.NewRegistration(testutil.ValidM1Form())
	a.registrations.Put(reg)

	w, env := a.do(t, http.MethodPatch, "/api/v1/registration/"+reg.ID, map[string]any{
		"first_name_th":       "สมหญิง",
		"id_card_or_passport": "3100700000001",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated model.Registration
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "สมหญิง", updated.FirstNameTH)
	assert.Equal(t, "1609900123456", updated.IDCardOrPassport)

	w, _ = a.do(t, http.MethodPatch, "/api/v1/registration/"+reg.ID+"/status", map[string]string{"status": "approved"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = a.do(t, http.MethodGet, "/api/v1/registrations/admitted?grade_level=m1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), model.ReferenceCode(reg.ID))
}

func TestAdminRoutes_RequireAuthAndPermission(t *testing.T) {
	a := newApp(t)

	w, env := a.do(t, http.MethodGet, "/api/v1/admin/registrations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", env.Error.Code)

	staff := a.login(t, model.RoleStaff)
	w, _ = a.do(t, http.MethodGet, "/api/v1/admin/registrations", nil, staff)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodDelete, "/api/v1/admin/registrations/any", nil, staff)
	assert.Equal(t, http.StatusForbidden, w.Code, "staff cannot delete registrations")

	w, _ = a.do(t, http.MethodPost, "/api/v1/auth/admin/logout", nil, staff)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = a.do(t, http.MethodGet, "/api/v1/admin/registrations", nil, staff)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_INVALIDATED", env.Error.Code)
}

func TestWizard_DoubleSubmitIsBusy(t *testing.T) {
	a := newApp(t)
	a.settings.Open(registration.GradeM1)

	w, env := a.do(t, http.MethodPost, "/api/v1/register/wizard", map[string]string{"grade_level": "m1"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		Wizard struct {
			ID string `json:"id"`
		} `json:"wizard"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))

	a.rdb.SetNX(t.Context(), config.CacheKey.WizardSubmitLockKey(view.Wizard.ID), 1, time.Minute)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("captcha", "1234"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register/wizard/"+view.Wizard.ID+"/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w, env = a.serve(t, req)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "WIZARD_BUSY", env.Error.Code)
}

func TestAdmissionUpdate_RequiresSuperAdmin(t *testing.T) {
	a := newApp(t)
	staff := a.login(t, model.RoleStaff)

	w, _ := a.do(t, http.MethodPut, "/api/v1/admin/admission/m1", map[string]bool{"is_open": true}, staff)
	assert.Equal(t, http.StatusForbidden, w.Code)

	head := a.login(t, model.RoleSuperAdmin)
	w, _ = a.do(t, http.MethodPut, "/api/v1/admin/admission/m1", map[string]bool{"is_open": true}, head)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := a.do(t, http.MethodGet, "/api/v1/register/form?grade_level=m1", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"open":true`)

	w, _ = a.do(t, http.MethodPut, "/api/v1/admin/admission/m9", map[string]bool{"is_open": true}, head)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
