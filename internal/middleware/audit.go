package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/crudbase/internal/audit"
)

// Audit returns a gin middleware that records who is behind each request.
//
// It captures the client IP and user agent, plus the authenticated user's
// email when Auth ran earlier in the chain, and stores them in the request
// context so the persistence layer can stamp audit fields on save.
//
// Audit must be registered after Auth on authenticated routes to pick up
// the email claim.
func Audit() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := audit.Info{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if claims := GetClaims(c); claims != nil {
			info.Email = claims.Email
		}

		c.Request = c.Request.WithContext(audit.WithContext(c.Request.Context(), info))
		c.Next()
	}
}
