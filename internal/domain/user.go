package domain

import "time"

// AccessType distinguishes user access levels. Stored as a string so the
// column stays readable and new levels do not renumber existing rows.
type AccessType string

const (
	AccessTypeDefault AccessType = "default"
	AccessTypeAdmin   AccessType = "admin"
)

// Valid reports whether the access type is one of the known levels.
func (a AccessType) Valid() bool {
	switch a {
	case AccessTypeDefault, AccessTypeAdmin:
		return true
	}
	return false
}

// User represents a registered user.
type User struct {
	Entity
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	AccessType   AccessType `gorm:"size:20;not null;default:default" json:"access_type"`
	RefreshToken string     `gorm:"size:64" json:"-"`
}
