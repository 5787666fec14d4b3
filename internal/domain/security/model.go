package security

import (
	"time"

	"github.com/google/uuid"
)

// HistoryLimit is how many previous password hashes a new password is
// checked against, and how many are retained per user.
const HistoryLimit = 3

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// ResetToken is a single-use password reset grant stored in the tenant
// store. The token value is an opaque uuid, not a JWT.
type ResetToken struct {
	ID        uuid.UUID  `db:"id" json:"-"`
	UserID    uuid.UUID  `db:"user_id" json:"-"`
	TenantID  string     `db:"tenant_id" json:"-"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"-"`
	Used      bool       `db:"used" json:"-"`
	UsedAt    *time.Time `db:"used_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"-"`
}

// Valid reports whether the token can still be redeemed for the given
// tenant at time now.
func (t *ResetToken) Valid(tenantID string, now time.Time) bool {
	return !t.Used && t.TenantID == tenantID && now.Before(t.ExpiresAt)
}

// HistoryEntry is a retired password hash.
type HistoryEntry struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
