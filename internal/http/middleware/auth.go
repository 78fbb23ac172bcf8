package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transporte/internal/domain"
)

const callerKey = "caller"

// TokenParser turns a bearer token into the caller it identifies.
type TokenParser interface {
	Parse(token string) (domain.RequestContext, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		caller, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// RequireRoles only lets the listed roles through. It must run after RequireAuth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		caller, ok := Caller(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "role not found on request")
			return
		}
		if _, ok := allowed[caller.Role]; !ok {
			abort(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

// Caller returns the authenticated user, if any.
func Caller(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

// DriverID is the caller's id when they are a driver and 0 for admins.
// Services treat 0 as "acting with admin rights".
func DriverID(c *gin.Context) domain.ID {
	if rc, ok := Caller(c); ok && rc.IsDriver() {
		return rc.UserID
	}
	return 0
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}
