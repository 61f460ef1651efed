package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/crudbase/internal/notification"
	"github.com/simp-lee/crudbase/internal/token"
)

const claimsContextKey = "auth_claims"

// Auth returns a gin middleware that requires a valid bearer token.
//
// The token is read from the Authorization header ("Bearer <token>").
// A missing, malformed, or invalid token aborts the request with a 401
// response whose body is a list of authentication notices.
//
// On success the parsed claims are stored in the gin.Context and can be
// retrieved with GetClaims.
func Auth(tm *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		claims, err := tm.Parse(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, token.ErrTokenExpired) {
				msg = "token expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// GetClaims extracts the authenticated claims from the gin.Context.
// Returns nil if the request was not authenticated.
func GetClaims(c *gin.Context) *token.Claims {
	if v, exists := c.Get(claimsContextKey); exists {
		if claims, ok := v.(*token.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	m := notification.NewManager()
	m.AddTyped(message, notification.Authentication)
	c.AbortWithStatusJSON(http.StatusUnauthorized, m.List())
}
