// Package token issues and verifies the signed tokens returned by the
// authentication endpoints. Only the claim set and expiry are contractual;
// signing is plain HS256.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/crudbase/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the decoded claim set carried by every issued token.
type Claims struct {
	UserID       string `json:"uid"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
	AccessType   string `json:"access_type"`
	jwt.RegisteredClaims
}

// Manager signs and parses tokens with a shared symmetric secret.
type Manager struct {
	secret      []byte
	tokenExpiry time.Duration
}

// NewManager creates a Manager. tokenTimeoutMinutes bounds the lifetime of
// every issued token.
func NewManager(secret string, tokenTimeoutMinutes int) *Manager {
	return &Manager{
		secret:      []byte(secret),
		tokenExpiry: time.Duration(tokenTimeoutMinutes) * time.Minute,
	}
}

// Generate signs a token for the given user. The claim set carries the user
// id, name, email, current refresh token, and access type; expiry is now plus
// the configured timeout.
func (m *Manager) Generate(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:       user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		RefreshToken: user.RefreshToken,
		AccessType:   string(user.AccessType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the signature and expiry of tokenStr and returns its claims.
// Tokens signed with any other method are rejected.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
