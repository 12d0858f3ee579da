package response

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func requestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Success(c, http.StatusOK, nil) })
	return r
}

func TestRequestID_KeepsWellFormedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "lb-7f3a.42")
	w := httptest.NewRecorder()
	requestIDRouter().ServeHTTP(w, req)

	assert.Equal(t, "lb-7f3a.42", w.Header().Get(HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"request_id":"lb-7f3a.42"`)
}

func TestRequestID_ReplacesMalformedHeader(t *testing.T) {
	for _, bad := range []string{"", "has space", "line\nbreak", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, bad)
		w := httptest.NewRecorder()
		requestIDRouter().ServeHTTP(w, req)

		got := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(got)
		assert.NoError(t, err, "header %q", bad)
	}
}
