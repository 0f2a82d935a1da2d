package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/response"
)

// Recovery turns a handler panic into a 500 envelope. The panic value is
// logged with the stack but never written to the client.
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.Errorw("panic recovered",
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, response.CodeInternalError, "Internal server error")
		}()

		c.Next()
	}
}
