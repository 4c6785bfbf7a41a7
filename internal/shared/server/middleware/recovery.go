package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/server/respond"
	"tire-backend/internal/shared/telemetry"
)

// Recovery turns a panic in a handler into a 500 error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Fail(c, http.StatusInternalServerError, "internal_error", "Beklenmeyen bir sunucu hatası oluştu.")
			}
		}()
		c.Next()
	}
}
