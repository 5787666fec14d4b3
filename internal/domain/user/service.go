package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// defaultAdminPassword is the fixed bootstrap credential surfaced once at
// tenant registration. The account carries force_password_change so the
// first login must rotate it.
const defaultAdminPassword = "Admin@1234"

type defaultRole struct {
	name        string
	description string
	permissions []string
}

var defaultRoles = []defaultRole{
	{
		name:        auth.RoleHospitalAdmin,
		description: "Hospital administrator",
		permissions: []string{
			auth.PermUserCreate, auth.PermUserRead, auth.PermUserUpdate, auth.PermUserStatusUpdate,
			auth.PermPatientCreate, auth.PermPatientRead, auth.PermPatientUpdate,
			auth.PermPrescriptionRead,
			auth.PermLabCreate, auth.PermLabRead, auth.PermLabUpdate,
			auth.PermVitalsCreate, auth.PermVitalsRead,
			auth.PermAppointmentCreate, auth.PermAppointmentRead, auth.PermAppointmentUpdate,
		},
	},
	{
		name:        auth.RoleDoctor,
		description: "Doctor",
		permissions: []string{
			auth.PermPatientRead,
			auth.PermPrescriptionCreate, auth.PermPrescriptionRead,
			auth.PermLabCreate, auth.PermLabRead, auth.PermLabUpdate,
			auth.PermVitalsCreate, auth.PermVitalsRead,
			auth.PermAppointmentRead, auth.PermAppointmentUpdate,
		},
	},
	{
		name:        auth.RoleNurse,
		description: "Nurse",
		permissions: []string{
			auth.PermPatientRead, auth.PermPrescriptionRead,
		},
	},
	{
		name:        auth.RoleReceptionist,
		description: "Receptionist",
		permissions: []string{
			auth.PermPatientCreate, auth.PermPatientRead,
		},
	},
	{
		name:        auth.RoleSuperAdmin,
		description: "Platform super admin",
		permissions: []string{auth.PermissionWildcard},
	},
}

type CreateInput struct {
	Username   string                 `json:"username"`
	Email      string                 `json:"email"`
	FirstName  string                 `json:"firstName"`
	LastName   string                 `json:"lastName"`
	Password   string                 `json:"password"`
	Roles      []string               `json:"roles"`
	Department string                 `json:"department"`
	Attributes map[string]interface{} `json:"attributes"`
}

type UpdateInput struct {
	Email      *string                `json:"email"`
	FirstName  *string                `json:"firstName"`
	LastName   *string                `json:"lastName"`
	Department *string                `json:"department"`
	Roles      []string               `json:"roles"`
	Attributes map[string]interface{} `json:"attributes"`
}

type Service struct {
	users  Repository
	roles  RoleRepository
	logger zerolog.Logger
}

func NewService(users Repository, roles RoleRepository, logger zerolog.Logger) *Service {
	return &Service{users: users, roles: roles, logger: logger}
}

// SeedDefaultRoles populates the role registry of a fresh tenant store.
// Seeding is count-guarded: a store that already has roles is left alone,
// so tenant-specific customizations survive re-registration of the pool.
func (s *Service) SeedDefaultRoles(ctx context.Context) error {
	n, err := s.roles.Count(ctx)
	if err != nil {
		return fmt.Errorf("count roles: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, dr := range defaultRoles {
		role := &Role{
			ID:          uuid.New(),
			Name:        dr.name,
			Description: dr.description,
			Permissions: dr.permissions,
		}
		if err := s.roles.Create(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", dr.name, err)
		}
	}
	s.logger.Info().Msg("default roles created for tenant")
	return nil
}

// CreateDefaultAdmin creates the bootstrap HOSPITAL_ADMIN account for a
// new tenant. If an admin already exists nothing is created and no
// password is returned.
func (s *Service) CreateDefaultAdmin(ctx context.Context, tenantID, domain, contactEmail, hospitalName string) (string, string, error) {
	exists, err := s.users.ExistsByRole(ctx, auth.RoleHospitalAdmin)
	if err != nil {
		return "", "", fmt.Errorf("check existing admin: %w", err)
	}
	if exists {
		s.logger.Info().Str("tenant_id", tenantID).Msg("admin already exists, skipping creation")
		return "", "", nil
	}

	username := "admin@" + domain
	u, err := s.Create(ctx, CreateInput{
		Username:   username,
		Email:      contactEmail,
		FirstName:  "Hospital",
		LastName:   "Admin",
		Password:   defaultAdminPassword,
		Roles:      []string{auth.RoleHospitalAdmin},
		Department: "ADMIN",
		Attributes: map[string]interface{}{"hospitalName": hospitalName},
	})
	if err != nil {
		return "", "", err
	}
	u.ForcePasswordChange = true
	if err := s.users.Update(ctx, u); err != nil {
		return "", "", fmt.Errorf("flag admin password change: %w", err)
	}

	s.logger.Info().
		Str("tenant_id", tenantID).
		Str("username", username).
		Msg("default admin created for tenant")
	return username, defaultAdminPassword, nil
}

// Create validates input and the password policy, rejects duplicate
// usernames and stores the user with a bcrypt hash.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" ||
		in.Password == "" {
		return nil, apperr.E(apperr.KindValidation, "Missing required user fields")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, apperr.E(apperr.KindValidation, "Username already exists")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}
	u := &User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Roles:        roles,
		Department:   in.Department,
		Attributes:   in.Attributes,
		Status:       StatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// ResolvePermissions flattens a user's roles into the effective permission
// set. SUPER_ADMIN short-circuits to the wildcard; otherwise the union of
// all role permission sets is returned, deduplicated in first-seen order.
func (s *Service) ResolvePermissions(ctx context.Context, roleNames []string) ([]string, error) {
	if len(roleNames) == 0 {
		return []string{}, nil
	}
	for _, name := range roleNames {
		if name == auth.RoleSuperAdmin {
			return []string{auth.PermissionWildcard}, nil
		}
	}

	roles, err := s.roles.GetByNames(ctx, roleNames)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	seen := make(map[string]struct{})
	perms := []string{}
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			perms = append(perms, p)
		}
	}
	return perms, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, f, limit, offset)
}

// Update applies the mutable profile fields. Username, password and
// status have dedicated paths and are never touched here.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Department != nil {
		u.Department = *in.Department
	}
	if in.Roles != nil {
		u.Roles = in.Roles
	}
	if in.Attributes != nil {
		u.Attributes = in.Attributes
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*User, error) {
	if !ValidStatus(status) {
		return nil, apperr.E(apperr.KindValidation, "Invalid status value")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = status
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user status: %w", err)
	}
	return u, nil
}

func (s *Service) Roles(ctx context.Context) ([]*Role, error) {
	return s.roles.List(ctx)
}
