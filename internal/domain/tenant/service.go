package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

// StoreProvisioner opens (creating if necessary) the isolated store for a
// tenant. Satisfied by *db.Router.
type StoreProvisioner interface {
	Resolve(ctx context.Context, tenantID string) (*pgxpool.Pool, error)
}

// Bootstrapper populates a freshly provisioned tenant store with its default
// roles and administrator account. Implemented by the user service; the
// indirection keeps this package from depending on it.
type Bootstrapper interface {
	SeedDefaultRoles(ctx context.Context) error
	CreateDefaultAdmin(ctx context.Context, tenantID, domain, contactEmail, hospitalName string) (username, password string, err error)
}

type RegisterInput struct {
	Name               string   `json:"name"`
	Address            string   `json:"address"`
	ContactEmail       string   `json:"contactEmail"`
	ContactPhone       string   `json:"contactPhone"`
	LicenseNumber      string   `json:"licenseNumber"`
	Domain             string   `json:"domain"`
	SupportedLanguages []string `json:"supportedLanguages"`
}

// RegisterResult carries the new tenant plus the generated admin credentials.
// The plaintext password is returned exactly once, at registration.
type RegisterResult struct {
	Tenant        *Tenant `json:"tenant"`
	AdminUsername string  `json:"adminUsername"`
	AdminPassword string  `json:"adminPassword"`
}

type Service struct {
	repo        Repository
	provisioner StoreProvisioner
	bootstrap   Bootstrapper
	logger      zerolog.Logger
}

func NewService(repo Repository, provisioner StoreProvisioner, bootstrap Bootstrapper, logger zerolog.Logger) *Service {
	return &Service{repo: repo, provisioner: provisioner, bootstrap: bootstrap, logger: logger}
}

// Register creates the tenant record, provisions its isolated store and
// bootstraps the default roles and admin account inside it. The tenant
// starts PENDING and must be verified before it can serve logins.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	domain := strings.ToLower(strings.TrimSpace(in.Domain))
	exists, err := s.repo.ExistsByDomainOrLicense(ctx, domain, in.LicenseNumber)
	if err != nil {
		return nil, fmt.Errorf("tenant register: %w", err)
	}
	if exists {
		return nil, apperr.E(apperr.KindValidation, "Tenant with this license or domain already exists")
	}

	token := uuid.NewString()
	langs := in.SupportedLanguages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	t := &Tenant{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(in.Name),
		Address:            strings.TrimSpace(in.Address),
		ContactEmail:       strings.ToLower(strings.TrimSpace(in.ContactEmail)),
		ContactPhone:       strings.TrimSpace(in.ContactPhone),
		LicenseNumber:      strings.TrimSpace(in.LicenseNumber),
		Domain:             domain,
		Status:             StatusPending,
		SupportedLanguages: langs,
		VerificationToken:  &token,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("tenant register: %w", err)
	}

	pool, err := s.provisioner.Resolve(ctx, t.ID.String())
	if err != nil {
		return nil, fmt.Errorf("provision tenant store: %w", err)
	}

	storeCtx := db.WithPool(ctx, pool)
	if err := s.bootstrap.SeedDefaultRoles(storeCtx); err != nil {
		return nil, fmt.Errorf("seed default roles: %w", err)
	}
	username, password, err := s.bootstrap.CreateDefaultAdmin(storeCtx, t.ID.String(), t.Domain, t.ContactEmail, t.Name)
	if err != nil {
		return nil, fmt.Errorf("create default admin: %w", err)
	}

	s.logger.Info().
		Str("tenant_id", t.ID.String()).
		Str("domain", t.Domain).
		Msg("tenant registered")

	return &RegisterResult{Tenant: t, AdminUsername: username, AdminPassword: password}, nil
}

// Verify activates the tenant that carries the given verification token and
// clears the token so it cannot be replayed.
func (s *Service) Verify(ctx context.Context, token string) (*Tenant, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.E(apperr.KindValidation, "Verification token is required")
	}
	t, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.E(apperr.KindValidation, "Invalid or expired verification token")
		}
		return nil, fmt.Errorf("tenant verify: %w", err)
	}

	t.Status = StatusActive
	t.VerificationToken = nil
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("tenant verify: %w", err)
	}

	s.logger.Info().Str("tenant_id", t.ID.String()).Msg("tenant verified")
	return t, nil
}

// Suspend marks a tenant SUSPENDED. Existing pooled connections stay
// usable; logins are refused at the session layer.
func (s *Service) Suspend(ctx context.Context, id string) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = StatusSuspended
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("tenant suspend: %w", err)
	}
	s.logger.Warn().Str("tenant_id", t.ID.String()).Msg("tenant suspended")
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return s.repo.GetByDomain(ctx, strings.ToLower(strings.TrimSpace(domain)))
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func validateRegisterInput(in RegisterInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.E(apperr.KindValidation, "Hospital name is required")
	case strings.TrimSpace(in.Domain) == "":
		return apperr.E(apperr.KindValidation, "Domain is required")
	case strings.TrimSpace(in.LicenseNumber) == "":
		return apperr.E(apperr.KindValidation, "License number is required")
	case strings.TrimSpace(in.ContactEmail) == "":
		return apperr.E(apperr.KindValidation, "Contact email is required")
	}
	if !strings.Contains(in.ContactEmail, "@") {
		return apperr.E(apperr.KindValidation, "Contact email is invalid")
	}
	return nil
}
