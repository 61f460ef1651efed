package repository

import (
	"context"
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/crudbase/internal/domain"
	"github.com/simp-lee/crudbase/internal/pkg"
)

// validColumnName matches only alphanumeric characters and underscores.
// Order columns are validated against it to prevent SQL injection.
var validColumnName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Option configures a Crud repository.
type Option func(*options)

type options struct {
	orderable []string
}

// WithOrderable registers the column names a Page request may order by.
// Columns outside this registry are silently ignored.
func WithOrderable(columns ...string) Option {
	return func(o *options) {
		o.orderable = append(o.orderable, columns...)
	}
}

// Crud is the generic data-access surface for one entity type. T is the model
// struct and P its pointer type exposing the embedded Entity. All typed
// repositories of a request share one Tracker, so staged mutations across
// entity types commit and roll back together.
type Crud[T any, P domain.Model[T]] struct {
	db        *gorm.DB
	uow       *Tracker
	orderable []string
}

// NewCrud creates a repository for T bound to the given database handle and
// unit of work.
func NewCrud[T any, P domain.Model[T]](db *gorm.DB, uow *Tracker, opts ...Option) *Crud[T, P] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Crud[T, P]{db: db, uow: uow, orderable: o.orderable}
}

// Query exposes a composable, lazily-evaluated query over T. Callers may
// further filter, order, or join before execution. The optional conds are a
// gorm condition (query plus arguments).
func (r *Crud[T, P]) Query(ctx context.Context, conds ...any) *gorm.DB {
	q := r.db.WithContext(ctx).Model(P(new(T)))
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	return q
}

// Any reports whether any row matches the given condition.
func (r *Crud[T, P]) Any(ctx context.Context, conds ...any) (bool, error) {
	var count int64
	if err := r.Query(ctx, conds...).Limit(1).Count(&count).Error; err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// First returns the first row matching the condition, or (nil, nil) when no
// row matches. Store faults propagate. The returned entity is attached to the
// unit of work so later Save/Rollback calls see its loaded values.
func (r *Crud[T, P]) First(ctx context.Context, conds ...any) (*T, error) {
	var e T
	if err := r.Query(ctx, conds...).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	r.uow.Track(&e, P(&e).EntityBase())
	return &e, nil
}

// Get returns the entity with the given identity, or (nil, nil) when absent.
func (r *Crud[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.First(ctx, "id = ?", id)
}

// Page materializes a bounded slice of the rows matching conds. The total is
// counted before slicing, so PagesAvailable and ItemsAvailable are exact even
// when rows are inserted between the two passes of a busy table.
func (r *Crud[T, P]) Page(ctx context.Context, req pkg.PageRequest, conds ...any) (*pkg.PagedResult[T], error) {
	query := r.order(r.Query(ctx, conds...), &req)
	return PageQuery[T](ctx, query, req)
}

// order applies the requested ordering when the column is in the registry.
// Unknown or invalid columns clear the request's order metadata and leave the
// query untouched.
func (r *Crud[T, P]) order(q *gorm.DB, req *pkg.PageRequest) *gorm.DB {
	col := strings.TrimSpace(req.OrderColumn)
	if col == "" {
		return q
	}
	if !validColumnName.MatchString(col) || !slices.Contains(r.orderable, col) {
		req.OrderColumn = ""
		req.OrderAscending = false
		return q
	}
	direction := "DESC"
	if req.OrderAscending {
		direction = "ASC"
	}
	req.OrderColumn = col
	return q.Order(col + " " + direction)
}

// PageQuery materializes one page of an arbitrary query into R, which may be
// a projection rather than the entity type. Page 0 means page 1; PageSize 0
// returns every matching row as a single page.
func PageQuery[R any](ctx context.Context, query *gorm.DB, req pkg.PageRequest) (*pkg.PagedResult[R], error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, mapError(err)
	}
	itemsAvailable := int(total)

	var (
		result *pkg.PagedResult[R]
		items  []R
	)
	if req.PageSize > 0 {
		pagesAvailable := int(math.Ceil(float64(itemsAvailable) / float64(req.PageSize)))
		offset := (page - 1) * req.PageSize
		if err := query.Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
			return nil, mapError(err)
		}
		result = pkg.NewPagedResult(page, pagesAvailable, req.PageSize, itemsAvailable, items)
	} else {
		if err := query.Find(&items).Error; err != nil {
			return nil, mapError(err)
		}
		result = pkg.NewPagedResult(page, 1, itemsAvailable, itemsAvailable, items)
	}

	result.OrderColumn = req.OrderColumn
	result.OrderAscending = req.OrderAscending
	return result, nil
}

// Save stages an insert when the entity has no identity yet, otherwise stages
// an update. Nothing reaches the store until Commit.
func (r *Crud[T, P]) Save(entity *T) {
	base := P(entity).EntityBase()
	if base.IsNew() {
		r.uow.attach(entity, base, Added)
		return
	}
	r.uow.attach(entity, base, Modified)
}

// SaveAndCommit stages the entity and flushes the unit of work. This is the
// common path; either step's failure propagates for the service layer to turn
// into a notification.
func (r *Crud[T, P]) SaveAndCommit(ctx context.Context, entity *T) error {
	r.Save(entity)
	return r.Commit(ctx)
}

// Delete stages removal of a tracked entity. Nothing reaches the store until
// Commit.
func (r *Crud[T, P]) Delete(entity *T) {
	r.uow.attach(entity, P(entity).EntityBase(), Deleted)
}

// DeleteAndCommit hard-deletes every entity whose identity is in ids, then
// flushes any other staged changes. An empty id set only flushes.
func (r *Crud[T, P]) DeleteAndCommit(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) > 0 {
		if err := r.Query(ctx).Where("id IN ?", ids).Delete(P(new(T))).Error; err != nil {
			return mapError(err)
		}
	}
	return r.Commit(ctx)
}

// DeactivateAndCommit soft-deletes the entities with the given ids by
// clearing their Active flag, then flushes staged changes. An empty id set is
// a no-op for the flag flip.
func (r *Crud[T, P]) DeactivateAndCommit(ctx context.Context, ids ...uuid.UUID) error {
	return r.setActive(ctx, false, ids)
}

// ActivateAndCommit restores soft-deleted entities by setting their Active
// flag, then flushes staged changes.
func (r *Crud[T, P]) ActivateAndCommit(ctx context.Context, ids ...uuid.UUID) error {
	return r.setActive(ctx, true, ids)
}

func (r *Crud[T, P]) setActive(ctx context.Context, active bool, ids []uuid.UUID) error {
	if len(ids) > 0 {
		err := r.Query(ctx).Where("id IN ?", ids).Updates(map[string]any{
			"active":     active,
			"updated_at": time.Now().UTC(),
		}).Error
		if err != nil {
			return mapError(err)
		}
	}
	return r.Commit(ctx)
}

// Commit flushes the shared unit of work.
func (r *Crud[T, P]) Commit(ctx context.Context) error {
	return r.uow.Commit(ctx, r.db)
}

// Rollback discards all staged changes in the shared unit of work, across
// every entity type, without contacting the store.
func (r *Crud[T, P]) Rollback() {
	r.uow.Rollback()
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
