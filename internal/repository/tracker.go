package repository

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/crudbase/internal/audit"
	"github.com/simp-lee/crudbase/internal/domain"
	"github.com/simp-lee/crudbase/internal/pkg"
)

// EntryState is the lifecycle state of a tracked entity within a unit of work.
type EntryState int

const (
	Unchanged EntryState = iota
	Added
	Modified
	Deleted
	detached // rolled-back Added entries, removed after fan-out completes
)

// entry tracks one entity instance. original holds a value snapshot of the
// entity struct taken when it was attached, used to restore Modified entries
// on rollback.
type entry struct {
	state    EntryState
	entity   any // pointer to the model struct
	base     *domain.Entity
	original reflect.Value
}

func (e *entry) snapshot() {
	v := reflect.ValueOf(e.entity).Elem()
	orig := reflect.New(v.Type()).Elem()
	orig.Set(v)
	e.original = orig
}

func (e *entry) restore() {
	reflect.ValueOf(e.entity).Elem().Set(e.original)
}

// Tracker is the unit of work shared by all typed repositories of a request.
// It stages entity mutations between load and commit: Commit flushes every
// staged entry to the store in one transaction, Rollback abandons them all
// without touching the store.
//
// A Tracker is scoped to one request and is not safe for concurrent staging.
type Tracker struct {
	entries []*entry
}

// NewTracker creates an empty unit of work.
func NewTracker() *Tracker {
	return &Tracker{}
}

// find returns the entry tracking the given entity pointer, if any.
func (t *Tracker) find(entity any) *entry {
	for _, e := range t.entries {
		if e.entity == entity {
			return e
		}
	}
	return nil
}

// attach registers entity under the given state. An already-tracked entity
// keeps its original snapshot and only moves to the new state; an untracked
// one is snapshotted as-is, so for entities attached directly as Modified the
// original values are the values at attach time.
func (t *Tracker) attach(entity any, base *domain.Entity, state EntryState) {
	if e := t.find(entity); e != nil {
		e.state = state
		return
	}
	e := &entry{state: state, entity: entity, base: base}
	e.snapshot()
	t.entries = append(t.entries, e)
}

// Track attaches a freshly loaded entity as Unchanged, snapshotting its
// loaded values so a later Rollback can restore them.
func (t *Tracker) Track(entity any, base *domain.Entity) {
	if t.find(entity) != nil {
		return
	}
	t.attach(entity, base, Unchanged)
}

// pending returns the entries with staged changes, in insertion order.
func (t *Tracker) pending() []*entry {
	var out []*entry
	for _, e := range t.entries {
		if e.state != Unchanged {
			out = append(out, e)
		}
	}
	return out
}

// HasPending reports whether any staged change awaits commit.
func (t *Tracker) HasPending() bool {
	return len(t.pending()) > 0
}

// Commit flushes all staged entries to the store inside a single transaction,
// in the order they were staged. New entities receive their identity here, and
// every flushed entity is stamped with the audit info carried by ctx (editor
// fields always, creator fields when newly added). On success the staged
// entries become Unchanged (Deleted ones are dropped); on failure they remain
// staged and the transaction is rolled back by the store.
func (t *Tracker) Commit(ctx context.Context, db *gorm.DB) error {
	pending := t.pending()
	if len(pending) == 0 {
		return nil
	}

	info := audit.FromContext(ctx)
	now := time.Now().UTC()

	err := pkg.WithTx(ctx, db, func(tx *gorm.DB) error {
		for _, e := range pending {
			switch e.state {
			case Added:
				if e.base.ID == uuid.Nil {
					e.base.ID = uuid.New()
				}
				audit.Stamp(e.base, info, true, now)
				if err := tx.Create(e.entity).Error; err != nil {
					return err
				}
			case Modified:
				audit.Stamp(e.base, info, false, now)
				if err := tx.Save(e.entity).Error; err != nil {
					return err
				}
			case Deleted:
				if err := tx.Delete(e.entity).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return mapError(err)
	}

	remaining := t.entries[:0]
	for _, e := range t.entries {
		if e.state == Deleted {
			continue
		}
		e.state = Unchanged
		e.snapshot()
		remaining = append(remaining, e)
	}
	t.entries = remaining
	return nil
}

// Rollback discards every staged change without contacting the store: Added
// entries are detached, Modified entries have their original values restored,
// Deleted entries return to Unchanged. Entries are independent, so they are
// rolled back in a fan-out and awaited together.
func (t *Tracker) Rollback() {
	t.rollbackEntries(t.pending())
}

// RollbackFor discards staged changes for entities of type T only.
func RollbackFor[T any](t *Tracker) {
	var scoped []*entry
	for _, e := range t.pending() {
		if _, ok := e.entity.(*T); ok {
			scoped = append(scoped, e)
		}
	}
	t.rollbackEntries(scoped)
}

func (t *Tracker) rollbackEntries(entries []*entry) {
	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch e.state {
			case Modified:
				e.restore()
				e.state = Unchanged
			case Added:
				e.state = detached
			case Deleted:
				e.state = Unchanged
			}
		}()
	}
	wg.Wait()

	remaining := t.entries[:0]
	for _, e := range t.entries {
		if e.state == detached {
			continue
		}
		remaining = append(remaining, e)
	}
	t.entries = remaining
}

// StateOf reports the tracked state of the given entity pointer.
// Untracked entities report Unchanged.
func (t *Tracker) StateOf(entity any) EntryState {
	if e := t.find(entity); e != nil {
		if e.state == detached {
			return Unchanged
		}
		return e.state
	}
	return Unchanged
}
