package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the common base struct embedded by every persisted model.
// uuid.Nil as ID means the record has not been persisted yet. Timestamps are
// always UTC. The audit columns are written only by the repository at commit
// time, never by domain logic.
type Entity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Active    bool      `json:"active"`

	CreatorIP        string `gorm:"size:45" json:"-"`
	CreatorUserAgent string `gorm:"size:512" json:"-"`
	CreatorEmail     string `gorm:"size:255" json:"-"`

	EditorIP        string `gorm:"size:45" json:"-"`
	EditorUserAgent string `gorm:"size:512" json:"-"`
	EditorEmail     string `gorm:"size:255" json:"-"`
}

// NewEntity returns an Entity initialized to the construction instant:
// CreatedAt == UpdatedAt == now (UTC) and Active true.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
		Active:    true,
	}
}

// IsNew reports whether the entity has not been persisted yet.
func (e *Entity) IsNew() bool {
	return e.ID == uuid.Nil
}

// EntityBase exposes the embedded Entity so generic code can reach the
// identity and audit fields of any model.
func (e *Entity) EntityBase() *Entity {
	return e
}

// Model is satisfied by a pointer to any struct embedding Entity. It is the
// constraint used by the generic repository: T is the model struct and *T
// must expose its Entity base.
type Model[T any] interface {
	*T
	EntityBase() *Entity
}
