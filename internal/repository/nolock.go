package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/simp-lee/crudbase/internal/domain"
)

// readUncommitted runs fn inside a dedicated transaction under the weakest
// isolation the driver offers, so hot-table reads do not contend with
// writers. The transaction is always completed: committed on success, rolled
// back on failure or panic.
func readUncommitted(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin(&sql.TxOptions{
		Isolation: sql.LevelReadUncommitted,
		ReadOnly:  false,
	})
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// FindWithNoLock materializes the rows selected by build under read-uncommitted
// isolation. Dirty reads are permitted; never use this on a read-then-write
// path that needs consistency.
func (r *Crud[T, P]) FindWithNoLock(ctx context.Context, build func(tx *gorm.DB) *gorm.DB) ([]T, error) {
	var items []T
	err := readUncommitted(ctx, r.db, func(tx *gorm.DB) error {
		q := tx.Model(P(new(T)))
		if build != nil {
			q = build(q)
		}
		return q.Find(&items).Error
	})
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// MaxWithNoLock computes MAX(column) over the rows of model matching conds,
// under read-uncommitted isolation. It returns ok=false when no row matches.
// The column name must be a plain identifier.
func MaxWithNoLock[R any](ctx context.Context, db *gorm.DB, model any, column string, conds ...any) (result R, ok bool, err error) {
	if !validColumnName.MatchString(column) {
		return result, false, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("invalid column name %q", column), nil)
	}

	var value sql.Null[R]
	err = readUncommitted(ctx, db, func(tx *gorm.DB) error {
		q := tx.Model(model)
		if len(conds) > 0 {
			q = q.Where(conds[0], conds[1:]...)
		}
		row := q.Select("MAX(" + column + ")").Row()
		return row.Scan(&value)
	})
	if err != nil {
		return result, false, mapError(err)
	}
	if !value.Valid {
		return result, false, nil
	}
	return value.V, true, nil
}
