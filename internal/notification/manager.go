package notification

import (
	"slices"
	"strings"
)

// blockingTypes are the notice types that make an operation's result unsafe
// to trust. Info and Warning are tolerated.
var blockingTypes = []Type{Error, Validation, Authentication, Authorization, NotFound}

// Manager collects the notifications produced during a single unit of work.
// The boundary layer consults it once, after the operation settles, to decide
// the outcome.
//
// A Manager is scoped to one request and must not be shared across
// concurrent operations; it performs no locking.
type Manager struct {
	items []*Notification
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends the given notifications in order, skipping nils.
func (m *Manager) Add(notifications ...*Notification) {
	for _, n := range notifications {
		if n == nil {
			continue
		}
		m.items = append(m.items, n)
	}
}

// AddError wraps err as an Error notification. A nil err is a no-op.
func (m *Manager) AddError(err error) {
	if err == nil {
		return
	}
	m.Add(FromError(err))
}

// AddValidation appends a Validation notification. Blank messages are ignored.
func (m *Manager) AddValidation(message string) {
	m.AddTyped(message, Validation)
}

// AddTyped appends a notification of the given type. Blank messages are ignored.
func (m *Manager) AddTyped(message string, t Type) {
	if strings.TrimSpace(message) == "" {
		return
	}
	m.Add(New(message, t))
}

// IsValid reports whether no blocking notification has accumulated.
// Info and Warning notices do not invalidate the operation.
func (m *Manager) IsValid() bool {
	return !m.AnyOf(blockingTypes...)
}

// Any reports whether any notification has accumulated.
func (m *Manager) Any() bool {
	return len(m.items) > 0
}

// AnyOf reports whether any accumulated notification has one of the given types.
func (m *Manager) AnyOf(types ...Type) bool {
	for _, n := range m.items {
		if slices.Contains(types, n.Type) {
			return true
		}
	}
	return false
}

// Clear discards all accumulated notifications.
func (m *Manager) Clear() {
	m.items = m.items[:0]
}

// List returns the accumulated notifications in insertion order.
// The returned slice is never nil so it serializes as [] rather than null.
func (m *Manager) List() []*Notification {
	if m.items == nil {
		return []*Notification{}
	}
	return m.items
}
