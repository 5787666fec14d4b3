package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/tenant"
	"github.com/hms/hms/internal/domain/user"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
)

// TenantDirectory looks up tenants in the master registry.
type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*tenant.Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error)
}

// StoreResolver opens the tenant store. Login runs before the tenant
// middleware (there is no token yet), so the service resolves the pool
// itself.
type StoreResolver interface {
	Resolve(ctx context.Context, tenantID string) (*pgxpool.Pool, error)
}

// PermissionResolver flattens role names into an effective permission
// set. Implemented by the user service.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, roles []string) ([]string, error)
}

type LoginInput struct {
	TenantID     string `json:"tenantId"`
	TenantDomain string `json:"tenantDomain"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// Profile is the user snapshot returned alongside the token pair.
type Profile struct {
	ID                  string   `json:"id"`
	Username            string   `json:"username"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Email               string   `json:"email"`
	Roles               []string `json:"roles"`
	Permissions         []string `json:"permissions"`
	Department          string   `json:"department,omitempty"`
	Status              string   `json:"status"`
	ForcePasswordChange bool     `json:"forcePasswordChange"`
	TenantID            string   `json:"tenantId"`
	TenantDomain        string   `json:"tenantDomain"`
	TenantName          string   `json:"tenantName"`
}

type LoginResult struct {
	AccessToken        string   `json:"accessToken"`
	RefreshToken       string   `json:"refreshToken"`
	MustChangePassword bool     `json:"mustChangePassword"`
	User               *Profile `json:"user"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service struct {
	tenants TenantDirectory
	stores  StoreResolver
	users   user.Repository
	perms   PermissionResolver
	tokens  *auth.TokenService
	logger  zerolog.Logger
}

func NewService(tenants TenantDirectory, stores StoreResolver, users user.Repository, perms PermissionResolver, tokens *auth.TokenService, logger zerolog.Logger) *Service {
	return &Service{tenants: tenants, stores: stores, users: users, perms: perms, tokens: tokens, logger: logger}
}

// Login authenticates a user against their tenant store and issues an
// access/refresh token pair. The checks run in a fixed order so the
// caller learns no more than necessary: tenant existence, tenant
// status, credentials, account status.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if (in.TenantID == "" && in.TenantDomain == "") || in.Username == "" || in.Password == "" {
		return nil, apperr.E(apperr.KindValidation, "tenantId/tenantDomain, username and password are required")
	}

	var (
		t   *tenant.Tenant
		err error
	)
	if in.TenantID != "" {
		t, err = s.tenants.GetByID(ctx, in.TenantID)
	} else {
		t, err = s.tenants.GetByDomain(ctx, in.TenantDomain)
	}
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "Hospital not found")
		}
		return nil, fmt.Errorf("login tenant lookup: %w", err)
	}
	if !t.IsActive() {
		return nil, apperr.E(apperr.KindForbidden, "Hospital is not active. Please contact support.")
	}

	pool, err := s.stores.Resolve(ctx, t.ID.String())
	if err != nil {
		return nil, fmt.Errorf("login resolve store: %w", err)
	}
	storeCtx := db.WithPool(ctx, pool)

	u, err := s.users.GetByUsername(storeCtx, strings.TrimSpace(in.Username))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.E(apperr.KindInvalidCredentials, "Invalid credentials")
		}
		return nil, fmt.Errorf("login user lookup: %w", err)
	}

	switch u.Status {
	case user.StatusInactive:
		return nil, apperr.E(apperr.KindForbidden, "User is inactive")
	case user.StatusLocked:
		return nil, apperr.E(apperr.KindForbidden, "User account is locked. Contact admin.")
	}

	if !user.CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.E(apperr.KindInvalidCredentials, "Invalid credentials")
	}

	mustChange := u.Status == user.StatusPasswordExpired || u.ForcePasswordChange

	permissions, err := s.perms.ResolvePermissions(storeCtx, u.Roles)
	if err != nil {
		return nil, fmt.Errorf("login permissions: %w", err)
	}

	identity := &auth.Identity{
		UserID:              u.ID.String(),
		TenantID:            t.ID.String(),
		Roles:               u.Roles,
		Permissions:         permissions,
		Username:            u.Username,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Department:          u.Department,
		Status:              string(u.Status),
		ForcePasswordChange: u.ForcePasswordChange,
	}

	access, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	s.logger.Info().
		Str("tenant_id", t.ID.String()).
		Str("username", u.Username).
		Msg("user logged in")

	return &LoginResult{
		AccessToken:        access,
		RefreshToken:       refresh,
		MustChangePassword: mustChange,
		User: &Profile{
			ID:                  u.ID.String(),
			Username:            u.Username,
			FirstName:           u.FirstName,
			LastName:            u.LastName,
			Email:               u.Email,
			Roles:               u.Roles,
			Permissions:         permissions,
			Department:          u.Department,
			Status:              string(u.Status),
			ForcePasswordChange: u.ForcePasswordChange,
			TenantID:            t.ID.String(),
			TenantDomain:        t.Domain,
			TenantName:          t.Name,
		},
	}, nil
}

// Refresh verifies the refresh token and re-issues both tokens from the
// claims embedded in it. No store lookup happens here: role or
// permission changes surface at the next login, not the next refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.E(apperr.KindValidation, "Refresh token is required")
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.E(apperr.KindInvalidToken, "Invalid or expired refresh token")
	}

	identity := claims.Identity()
	access, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("reissue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, fmt.Errorf("reissue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout is stateless: clients discard their tokens. The endpoint
// exists so the action is auditable.
func (s *Service) Logout(ctx context.Context) map[string]string {
	return map[string]string{"message": "Logged out successfully"}
}
