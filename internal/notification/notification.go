package notification

import (
	"fmt"
	"time"
)

// Type classifies a notification. The zero value is not a valid type.
type Type int

const (
	Info Type = iota + 1
	Warning
	Error
	Validation
	Authentication
	Authorization
	NotFound
)

var typeNames = map[Type]string{
	Info:           "info",
	Warning:        "warning",
	Error:          "error",
	Validation:     "validation",
	Authentication: "authentication",
	Authorization:  "authorization",
	NotFound:       "not_found",
}

// String returns the lowercase name of the type, or "unknown" for
// unrecognized values.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the type as its string name.
func (t Type) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Notification is a typed message accumulated during an operation.
// Notifications are immutable once created.
type Notification struct {
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Time    time.Time `json:"time"`
	Type    Type      `json:"type"`
}

// New creates a notification of the given type. The creation instant is
// recorded in UTC.
func New(message string, t Type) *Notification {
	return &Notification{
		Message: message,
		Time:    time.Now().UTC(),
		Type:    t,
	}
}

// NewDetailed creates a notification carrying an additional detail string.
func NewDetailed(message string, t Type, detail string) *Notification {
	n := New(message, t)
	n.Detail = detail
	return n
}

// FromError wraps any error as an Error-typed notification. The error's
// message becomes the notification message and its full representation the
// detail.
func FromError(err error) *Notification {
	if err == nil {
		return nil
	}
	return NewDetailed(err.Error(), Error, fmt.Sprintf("%+v", err))
}
