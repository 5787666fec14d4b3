package user

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive          Status = "ACTIVE"
	StatusInactive        Status = "INACTIVE"
	StatusLocked          Status = "LOCKED"
	StatusPasswordExpired Status = "PASSWORD_EXPIRED"
)

// ValidStatus reports whether s is one of the recognized account states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusLocked, StatusPasswordExpired:
		return true
	}
	return false
}

// User is a staff account inside one tenant store. PasswordHash never
// leaves the API.
type User struct {
	ID                  uuid.UUID              `db:"id" json:"userId"`
	Username            string                 `db:"username" json:"username"`
	Email               string                 `db:"email" json:"email"`
	FirstName           string                 `db:"first_name" json:"firstName"`
	LastName            string                 `db:"last_name" json:"lastName"`
	PasswordHash        string                 `db:"password_hash" json:"-"`
	Roles               []string               `db:"roles" json:"roles"`
	Department          string                 `db:"department" json:"department,omitempty"`
	Attributes          map[string]interface{} `db:"attributes" json:"attributes,omitempty"`
	Status              Status                 `db:"status" json:"status"`
	ForcePasswordChange bool                   `db:"force_password_change" json:"forcePasswordChange"`
	CreatedAt           time.Time              `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time              `db:"updated_at" json:"updatedAt"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Role names a permission set. Roles live in the tenant store so a
// hospital can extend the defaults without touching other tenants.
type Role struct {
	ID          uuid.UUID `db:"id" json:"roleId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Permissions []string  `db:"permissions" json:"permissions"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
