package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/nbwschool/admission-backend/internal/response"
	"github.com/rs/zerolog"
)

// Recovery turns a panic into a logged 500 with the generic error body.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "recovery").Logger()
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("request_id", response.RequestID(c)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				if !c.Writer.Written() {
					response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
