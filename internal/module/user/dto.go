package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/crudbase/internal/domain"
)

// RegisterRequest represents the input for registering a new user.
type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,min=2,max=100"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// AuthByEmailRequest represents the credentials for password authentication.
// Blank fields are reported by the service, not the binding layer, so both
// halves of an empty form surface as notices in one response.
type AuthByEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthByRefreshTokenRequest represents the input for re-issuing a token.
type AuthByRefreshTokenRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

// IDListRequest carries the target ids of a bulk operation. An empty list is
// accepted and treated as a no-op.
type IDListRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// StatusResult is the payload of the authenticated ping endpoint.
type StatusResult struct {
	Status      string     `json:"status"`
	ActiveUsers int        `json:"active_users"`
	LatestLogin *time.Time `json:"latest_login,omitempty"`
}

// TokenResult is the payload returned by both authentication endpoints.
type TokenResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the outward shape of a user. Credentials and audit columns
// never appear here.
type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Active     bool       `json:"active"`
	AccessType string     `json:"access_type"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Active:     u.Active,
		AccessType: string(u.AccessType),
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}
