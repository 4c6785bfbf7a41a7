package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ownerIDKey = "ownerId"
	isGuestKey = "isGuest"

	anonymousOwner = "anonymous"
)

// Identity derives the request principal from the X-User-Id or X-Guest-Id
// header. Nothing is authenticated: the principal only scopes history and
// rate limits. Requests carrying neither header share the anonymous principal.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		switch {
		case strings.TrimSpace(c.GetHeader("X-User-Id")) != "":
			c.Set(ownerIDKey, "user:"+strings.TrimSpace(c.GetHeader("X-User-Id")))
			c.Set(isGuestKey, false)
		case strings.TrimSpace(c.GetHeader("X-Guest-Id")) != "":
			c.Set(ownerIDKey, "guest:"+strings.TrimSpace(c.GetHeader("X-Guest-Id")))
			c.Set(isGuestKey, true)
		default:
			c.Set(ownerIDKey, anonymousOwner)
			c.Set(isGuestKey, true)
		}
		c.Next()
	}
}

// OwnerIDFromContext returns the principal set by Identity.
func OwnerIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(ownerIDKey)
}

// IsGuest reports whether the principal came from a guest header or no header at all.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return true
	}
	guest, ok := c.Get(isGuestKey)
	if !ok {
		return true
	}
	b, _ := guest.(bool)
	return b
}
