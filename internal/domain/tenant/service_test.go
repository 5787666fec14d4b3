package tenant

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

// mockRepo keeps tenants in a map keyed by id.
type mockRepo struct {
	tenants map[string]*Tenant
}

func newMockRepo() *mockRepo {
	return &mockRepo{tenants: make(map[string]*Tenant)}
}

func (m *mockRepo) Create(_ context.Context, t *Tenant) error {
	m.tenants[t.ID.String()] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, "Hospital not found")
	}
	return t, nil
}

func (m *mockRepo) GetByDomain(_ context.Context, domain string) (*Tenant, error) {
	for _, t := range m.tenants {
		if t.Domain == domain {
			return t, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Hospital not found")
}

func (m *mockRepo) GetByVerificationToken(_ context.Context, token string) (*Tenant, error) {
	for _, t := range m.tenants {
		if t.VerificationToken != nil && *t.VerificationToken == token {
			return t, nil
		}
	}
	return nil, apperr.E(apperr.KindNotFound, "Hospital not found")
}

func (m *mockRepo) ExistsByDomainOrLicense(_ context.Context, domain, license string) (bool, error) {
	for _, t := range m.tenants {
		if t.Domain == domain || t.LicenseNumber == license {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Update(_ context.Context, t *Tenant) error {
	m.tenants[t.ID.String()] = t
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Tenant, int, error) {
	var all []*Tenant
	for _, t := range m.tenants {
		all = append(all, t)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// mockProvisioner hands out a pool that never dials.
type mockProvisioner struct {
	pool     *pgxpool.Pool
	resolved []string
}

func (m *mockProvisioner) Resolve(_ context.Context, tenantID string) (*pgxpool.Pool, error) {
	m.resolved = append(m.resolved, tenantID)
	return m.pool, nil
}

type mockBootstrapper struct {
	seeded    bool
	adminFor  string
	sawPool   bool
	adminUser string
	adminPass string
}

func (m *mockBootstrapper) SeedDefaultRoles(ctx context.Context) error {
	m.seeded = true
	m.sawPool = db.PoolFromContext(ctx) != nil
	return nil
}

func (m *mockBootstrapper) CreateDefaultAdmin(_ context.Context, tenantID, domain, _, _ string) (string, string, error) {
	m.adminFor = tenantID
	m.adminUser = "admin@" + domain
	m.adminPass = "Admin@1234"
	return m.adminUser, m.adminPass, nil
}

func lazyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg, err := pgxpool.ParseConfig("postgres://localhost:5432/hms_test")
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return pool
}

func testService(t *testing.T) (*Service, *mockRepo, *mockProvisioner, *mockBootstrapper) {
	t.Helper()
	repo := newMockRepo()
	prov := &mockProvisioner{pool: lazyPool(t)}
	boot := &mockBootstrapper{}
	return NewService(repo, prov, boot, testLogger()), repo, prov, boot
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:          "City General",
		Address:       "1 Main St",
		ContactEmail:  "ops@citygeneral.example",
		ContactPhone:  "555-0100",
		LicenseNumber: "LIC-1001",
		Domain:        "citygeneral",
	}
}

func TestRegister_ProvisionsAndBootstraps(t *testing.T) {
	svc, repo, prov, boot := testService(t)

	res, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Tenant.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", res.Tenant.Status)
	}
	if res.Tenant.VerificationToken == nil || *res.Tenant.VerificationToken == "" {
		t.Error("expected a verification token")
	}
	if res.AdminUsername != "admin@citygeneral" {
		t.Errorf("admin username = %q", res.AdminUsername)
	}
	if res.AdminPassword == "" {
		t.Error("expected admin password in register result")
	}
	if len(prov.resolved) != 1 || prov.resolved[0] != res.Tenant.ID.String() {
		t.Errorf("provisioner resolved %v", prov.resolved)
	}
	if !boot.seeded {
		t.Error("default roles not seeded")
	}
	if !boot.sawPool {
		t.Error("bootstrapper did not receive the tenant pool via context")
	}
	if boot.adminFor != res.Tenant.ID.String() {
		t.Errorf("admin created for %q", boot.adminFor)
	}
	if _, ok := repo.tenants[res.Tenant.ID.String()]; !ok {
		t.Error("tenant not persisted")
	}
}

func TestRegister_DuplicateDomainOrLicense(t *testing.T) {
	svc, _, _, _ := testService(t)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := validInput()
	dup.LicenseNumber = "LIC-2002" // same domain
	_, err := svc.Register(context.Background(), dup)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperr.MessageOf(err) != "Tenant with this license or domain already exists" {
		t.Errorf("message = %q", apperr.MessageOf(err))
	}

	dup2 := validInput()
	dup2.Domain = "othercampus" // same license
	if _, err := svc.Register(context.Background(), dup2); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for duplicate license, got %v", err)
	}
}

func TestRegister_ValidatesInput(t *testing.T) {
	svc, _, _, _ := testService(t)

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = " " }},
		{"missing domain", func(in *RegisterInput) { in.Domain = "" }},
		{"missing license", func(in *RegisterInput) { in.LicenseNumber = "" }},
		{"missing email", func(in *RegisterInput) { in.ContactEmail = "" }},
		{"bad email", func(in *RegisterInput) { in.ContactEmail = "not-an-email" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_NormalizesDomain(t *testing.T) {
	svc, _, _, _ := testService(t)

	in := validInput()
	in.Domain = "  CityGeneral  "
	res, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Tenant.Domain != "citygeneral" {
		t.Errorf("domain = %q, want lowercased trimmed", res.Tenant.Domain)
	}
	if len(res.Tenant.SupportedLanguages) != 1 || res.Tenant.SupportedLanguages[0] != "en" {
		t.Errorf("languages = %v, want default [en]", res.Tenant.SupportedLanguages)
	}
}

func TestVerify_ActivatesAndConsumesToken(t *testing.T) {
	svc, repo, _, _ := testService(t)

	res, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token := *res.Tenant.VerificationToken

	verified, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Status != StatusActive {
		t.Errorf("status = %s, want ACTIVE", verified.Status)
	}
	if verified.VerificationToken != nil {
		t.Error("verification token not cleared")
	}
	stored := repo.tenants[verified.ID.String()]
	if stored.Status != StatusActive {
		t.Error("activation not persisted")
	}

	// Replay is refused.
	if _, err := svc.Verify(context.Background(), token); err == nil {
		t.Fatal("expected replayed token to be rejected")
	} else if apperr.MessageOf(err) != "Invalid or expired verification token" {
		t.Errorf("message = %q", apperr.MessageOf(err))
	}
}

func TestVerify_UnknownToken(t *testing.T) {
	svc, _, _, _ := testService(t)

	_, err := svc.Verify(context.Background(), "no-such-token")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(apperr.MessageOf(err), "Invalid or expired verification token") {
		t.Errorf("message = %q", apperr.MessageOf(err))
	}
}

func TestSuspend(t *testing.T) {
	svc, _, _, _ := testService(t)

	res, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	sus, err := svc.Suspend(context.Background(), res.Tenant.ID.String())
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if sus.Status != StatusSuspended {
		t.Errorf("status = %s, want SUSPENDED", sus.Status)
	}

	if _, err := svc.Suspend(context.Background(), "missing-id"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
