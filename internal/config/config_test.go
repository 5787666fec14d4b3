package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("MASTER_DATABASE_URL", "postgres://localhost:5432/hms_master")
	t.Cleanup(func() { os.Unsetenv("MASTER_DATABASE_URL") })
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.TenantSchemaPrefix != "hms_tenant_" {
		t.Errorf("unexpected schema prefix %q", cfg.TenantSchemaPrefix)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected 15m access TTL, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Errorf("expected 168h refresh TTL, got %s", cfg.RefreshTokenTTL)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	os.Unsetenv("MASTER_DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when MASTER_DATABASE_URL is unset")
	}
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT secrets in production")
	}

	cfg.JWTAccessSecret = "a"
	cfg.JWTRefreshSecret = "b"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_SecretsMustDiffer(t *testing.T) {
	cfg := &Config{
		Env:              "production",
		JWTAccessSecret:  "same",
		JWTRefreshSecret: "same",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  168 * time.Hour,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for identical secrets")
	}
}

func TestValidate_RejectsMirroredEmptySecretsInDev(t *testing.T) {
	cfg := &Config{
		Env:             "development",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for identical empty secrets in development")
	}
}

func TestLoad_GeneratesDistinctDevSecrets(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("JWT_ACCESS_SECRET")
	os.Unsetenv("JWT_REFRESH_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		t.Fatal("expected generated dev secrets, got empty")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		t.Error("generated dev secrets must differ per token class")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded dev config failed validation: %v", err)
	}
}

func TestValidate_TTLOrdering(t *testing.T) {
	cfg := &Config{
		Env:              "production",
		JWTAccessSecret:  "a",
		JWTRefreshSecret: "b",
		AccessTokenTTL:   168 * time.Hour,
		RefreshTokenTTL:  15 * time.Minute,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when access TTL exceeds refresh TTL")
	}
}
