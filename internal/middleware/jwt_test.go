package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/service"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAdminJWT_QueryTokenOnlyForStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}, testutil.NewFakeRedis())
	token, _, err := auth.GenerateAdminToken(t.Context(), &model.Admin{ID: 7, Email: "a@school.ac.th", Role: model.RoleStaff})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/feed", RequireAdminJWT(auth), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetClaims(c).UserID)
	})

	req := httptest.NewRequest(http.MethodGet, "/feed?token="+url.QueryEscape(token), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/feed?token="+url.QueryEscape(token), nil)
	req.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRedactedURI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ws/v1/admin/registrations/stream?token=secret&x=1", nil)
	assert.Equal(t, "/ws/v1/admin/registrations/stream?token=REDACTED&x=1", redactedURI(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/news?page=2", nil)
	assert.Equal(t, "/api/v1/news?page=2", redactedURI(c))
}
