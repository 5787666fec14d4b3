package auth

import "context"

// Role and permission names shared across the platform. Roles are seeded
// per tenant at onboarding; SUPER_ADMIN is the platform role whose
// permission set is the universal wildcard.
const (
	RoleHospitalAdmin = "HOSPITAL_ADMIN"
	RoleDoctor        = "DOCTOR"
	RoleNurse         = "NURSE"
	RoleReceptionist  = "RECEPTIONIST"
	RoleSuperAdmin    = "SUPER_ADMIN"

	PermissionWildcard = "*"

	PermUserCreate       = "USER_CREATE"
	PermUserRead         = "USER_READ"
	PermUserUpdate       = "USER_UPDATE"
	PermUserStatusUpdate = "USER_STATUS_UPDATE"

	PermPatientCreate = "PATIENT_CREATE"
	PermPatientRead   = "PATIENT_READ"
	PermPatientUpdate = "PATIENT_UPDATE"

	PermPrescriptionCreate = "PRESCRIPTION_CREATE"
	PermPrescriptionRead   = "PRESCRIPTION_READ"

	PermLabCreate = "LAB_CREATE"
	PermLabRead   = "LAB_READ"
	PermLabUpdate = "LAB_UPDATE"

	PermVitalsCreate = "VITALS_CREATE"
	PermVitalsRead   = "VITALS_READ"

	PermAppointmentCreate = "APPOINTMENT_CREATE"
	PermAppointmentRead   = "APPOINTMENT_READ"
	PermAppointmentUpdate = "APPOINTMENT_UPDATE"
)

// Identity is the verified authorization snapshot for one request,
// reconstructed from token claims. There is no server-side session store.
type Identity struct {
	UserID              string   `json:"userId"`
	TenantID            string   `json:"tenantId"`
	Roles               []string `json:"roles"`
	Permissions         []string `json:"permissions"`
	Username            string   `json:"username"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Department          string   `json:"department"`
	Status              string   `json:"status"`
	ForcePasswordChange bool     `json:"forcePasswordChange"`
}

// HasRole reports whether the identity holds the named role.
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the identity's permission set contains the
// wildcard or the named permission.
func (id *Identity) HasPermission(perm string) bool {
	for _, p := range id.Permissions {
		if p == PermissionWildcard || p == perm {
			return true
		}
	}
	return false
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity binds a verified identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the verified identity, or nil for
// unauthenticated requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
