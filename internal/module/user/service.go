package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/crudbase/internal/domain"
	"github.com/simp-lee/crudbase/internal/repository"
	"github.com/simp-lee/crudbase/internal/notification"
	"github.com/simp-lee/crudbase/internal/pkg"
	"github.com/simp-lee/crudbase/internal/token"
)

// invalidCredentials is deliberately the same for an unknown email, a wrong
// password, and a stale refresh token, so the response never reveals which
// half of the credentials failed.
const invalidCredentials = "invalid email or password"

// Service implements registration and authentication. Outcomes are reported
// through the per-request notification manager; an error return is reserved
// for faults the caller cannot express as a notice.
//
// The unit of work is per operation, so each public method opens a fresh
// repository and staged changes never leak between concurrent requests.
type Service struct {
	db             *gorm.DB
	tokens         *token.Manager
	refreshTimeout time.Duration
}

// NewService creates a user service. refreshTimeoutMinutes bounds how long
// after the last login a refresh token stays usable.
func NewService(db *gorm.DB, tokens *token.Manager, refreshTimeoutMinutes int) *Service {
	return &Service{
		db:             db,
		tokens:         tokens,
		refreshTimeout: time.Duration(refreshTimeoutMinutes) * time.Minute,
	}
}

func (s *Service) newRepo() *Repository {
	return NewRepository(s.db, repository.NewTracker())
}

// Register creates a new user. A password confirmation mismatch is reported
// as a single validation notice and the store is never touched. The unique
// index on email is the sole uniqueness check, so concurrent registrations
// of the same address cannot race past a lookup; the constraint fault is
// classified back into the validation notice.
func (s *Service) Register(ctx context.Context, m *notification.Manager, req RegisterRequest) *UserResponse {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if req.Password != req.PasswordConfirmation {
		m.AddValidation("password confirmation does not match")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		m.AddError(err)
		return nil
	}

	u := &domain.User{
		Entity:       domain.NewEntity(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AccessType:   domain.AccessTypeDefault,
		RefreshToken: uuid.NewString(),
	}

	if err := s.newRepo().SaveAndCommit(ctx, u); err != nil {
		if domain.IsAlreadyExists(err) {
			m.AddValidation("email already registered")
		} else {
			m.AddError(err)
		}
		return nil
	}

	resp := toUserResponse(*u)
	return &resp
}

// AuthenticateByEmail checks the password of an active user and issues a
// fresh token pair. Unknown email and wrong password produce the same notice.
func (s *Service) AuthenticateByEmail(ctx context.Context, m *notification.Manager, email, password string) *TokenResult {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		m.AddValidation("email is required")
	}
	if password == "" {
		m.AddValidation("password is required")
	}
	if !m.IsValid() {
		return nil
	}

	repo := s.newRepo()
	u, err := repo.FirstByEmail(ctx, email, true)
	if err != nil {
		m.AddError(err)
		return nil
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		m.AddValidation(invalidCredentials)
		return nil
	}

	return s.issueToken(ctx, m, repo, u)
}

// AuthenticateByRefreshToken re-issues a token pair for a user presenting a
// still-valid refresh token. The token is single-use: a successful refresh
// rotates it.
func (s *Service) AuthenticateByRefreshToken(ctx context.Context, m *notification.Manager, email, refreshToken string) *TokenResult {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		m.AddValidation("email is required")
	}
	if refreshToken == "" {
		m.AddValidation("refresh token is required")
	}
	if !m.IsValid() {
		return nil
	}

	repo := s.newRepo()
	u, err := repo.FirstByEmail(ctx, email, true)
	if err != nil {
		m.AddError(err)
		return nil
	}
	if u == nil || u.RefreshToken == "" || u.RefreshToken != refreshToken {
		m.AddValidation(invalidCredentials)
		return nil
	}
	if u.LastLogin == nil || time.Now().UTC().After(u.LastLogin.Add(s.refreshTimeout)) {
		m.AddValidation(invalidCredentials)
		return nil
	}

	return s.issueToken(ctx, m, repo, u)
}

// issueToken records the login instant, rotates the refresh token, commits,
// and signs a new token carrying the rotated value.
func (s *Service) issueToken(ctx context.Context, m *notification.Manager, repo *Repository, u *domain.User) *TokenResult {
	now := time.Now().UTC()
	u.LastLogin = &now
	u.RefreshToken = uuid.NewString()

	notification.Guard(ctx, m, func(ctx context.Context) error {
		return repo.SaveAndCommit(ctx, u)
	})
	if !m.IsValid() {
		return nil
	}

	signed, err := s.tokens.Generate(u)
	if err != nil {
		m.AddError(err)
		return nil
	}
	return &TokenResult{Token: signed, RefreshToken: u.RefreshToken}
}

// GetByEmail returns the active user with the given email.
func (s *Service) GetByEmail(ctx context.Context, m *notification.Manager, email string) *UserResponse {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		m.AddValidation("email is required")
		return nil
	}

	u, err := s.newRepo().FirstByEmail(ctx, email, true)
	if err != nil {
		m.AddError(err)
		return nil
	}
	if u == nil {
		m.AddTyped("user not found", notification.NotFound)
		return nil
	}

	resp := toUserResponse(*u)
	return &resp
}

// List returns one page of users projected to the response shape.
func (s *Service) List(ctx context.Context, m *notification.Manager, req pkg.PageRequest) *pkg.PagedResult[UserResponse] {
	page, err := s.newRepo().Page(ctx, req)
	if err != nil {
		m.AddError(err)
		return nil
	}
	return pkg.MapPage(page, toUserResponse)
}

// Status reports liveness figures for the ping endpoint: how many users are
// active (read without row locks) and when the most recent login happened.
func (s *Service) Status(ctx context.Context, m *notification.Manager) *StatusResult {
	repo := s.newRepo()

	count, err := repo.ActiveCountNoLock(ctx)
	if err != nil {
		m.AddError(err)
		return nil
	}

	status := &StatusResult{Status: "ok", ActiveUsers: count}
	if latest, ok, err := repo.LatestLogin(ctx); err != nil {
		m.AddError(err)
		return nil
	} else if ok {
		status.LatestLogin = &latest
	}
	return status
}

// Deactivate soft-deletes the users with the given ids. An empty list is a
// no-op.
func (s *Service) Deactivate(ctx context.Context, m *notification.Manager, ids []uuid.UUID) {
	notification.Guard(ctx, m, func(ctx context.Context) error {
		return s.newRepo().DeactivateAndCommit(ctx, ids...)
	})
}

// Activate restores previously deactivated users.
func (s *Service) Activate(ctx context.Context, m *notification.Manager, ids []uuid.UUID) {
	notification.Guard(ctx, m, func(ctx context.Context) error {
		return s.newRepo().ActivateAndCommit(ctx, ids...)
	})
}

// Delete permanently removes the users with the given ids.
func (s *Service) Delete(ctx context.Context, m *notification.Manager, ids []uuid.UUID) {
	notification.Guard(ctx, m, func(ctx context.Context) error {
		return s.newRepo().DeleteAndCommit(ctx, ids...)
	})
}
