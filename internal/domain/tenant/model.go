package tenant

import (
	"time"

	"github.com/google/uuid"
)

// Status is the tenant lifecycle state. Tenants are never physically
// deleted; deactivation is a status change.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusVerified  Status = "VERIFIED"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusInactive  Status = "INACTIVE"
)

// Tenant maps to the tenants table in the master database.
type Tenant struct {
	ID                 uuid.UUID `db:"id" json:"tenantId"`
	Name               string    `db:"name" json:"name"`
	Address            string    `db:"address" json:"address"`
	ContactEmail       string    `db:"contact_email" json:"contactEmail"`
	ContactPhone       string    `db:"contact_phone" json:"contactPhone"`
	LicenseNumber      string    `db:"license_number" json:"licenseNumber"`
	Domain             string    `db:"domain" json:"domain"`
	Status             Status    `db:"status" json:"status"`
	SupportedLanguages []string  `db:"supported_languages" json:"supportedLanguages"`
	VerificationToken  *string   `db:"verification_token" json:"-"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the tenant may serve logins and requests.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}
