package user

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/crudbase/internal/domain"
	"github.com/simp-lee/crudbase/internal/repository"
)

// Repository is the user data-access surface. It embeds the generic CRUD
// repository and adds the lookups the authentication flow needs.
type Repository struct {
	*repository.Crud[domain.User, *domain.User]
	db *gorm.DB
}

// NewRepository creates a user repository bound to db and the shared unit of
// work.
func NewRepository(db *gorm.DB, uow *repository.Tracker) *Repository {
	return &Repository{
		Crud: repository.NewCrud[domain.User](db, uow,
			repository.WithOrderable("name", "email", "created_at", "updated_at", "last_login")),
		db: db,
	}
}

// FirstByEmail returns the user with the given email, or (nil, nil) when
// absent. When activeOnly is set, deactivated users are treated as absent.
func (r *Repository) FirstByEmail(ctx context.Context, email string, activeOnly bool) (*domain.User, error) {
	if activeOnly {
		return r.First(ctx, "email = ? AND active = ?", email, true)
	}
	return r.First(ctx, "email = ?", email)
}

// ActiveCountNoLock reports how many users are active, read without row
// locks so a liveness probe never stalls behind a long-running write
// transaction.
func (r *Repository) ActiveCountNoLock(ctx context.Context) (int, error) {
	users, err := r.FindWithNoLock(ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id").Where("active = ?", true)
	})
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// LatestLogin returns the most recent last_login among active users. ok is
// false when no user has logged in yet.
func (r *Repository) LatestLogin(ctx context.Context) (latest time.Time, ok bool, err error) {
	var out []time.Time
	err = r.Query(ctx, "active = ? AND last_login IS NOT NULL", true).
		Order("last_login DESC").Limit(1).Pluck("last_login", &out).Error
	if err != nil || len(out) == 0 {
		return latest, false, err
	}
	return out[0], true, nil
}
