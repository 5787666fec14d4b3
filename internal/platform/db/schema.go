package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// masterDDL lays out the tenant registry tables in the master database.
const masterDDL = `
CREATE TABLE IF NOT EXISTS tenants (
    id              UUID PRIMARY KEY,
    name            TEXT NOT NULL,
    address         TEXT NOT NULL,
    contact_email   TEXT NOT NULL,
    contact_phone   TEXT NOT NULL,
    license_number  TEXT NOT NULL UNIQUE,
    domain          TEXT NOT NULL UNIQUE,
    status          TEXT NOT NULL DEFAULT 'PENDING',
    supported_languages TEXT[] NOT NULL DEFAULT '{en}',
    verification_token TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tenants_domain ON tenants (domain);
CREATE INDEX IF NOT EXISTS idx_tenants_verification_token ON tenants (verification_token);
`

// tenantDDL lays out one tenant's isolated store. Every statement is
// idempotent: the router applies it each time a tenant handle is first
// opened in a process (register-or-reuse).
const tenantDDL = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY,
    username        TEXT NOT NULL UNIQUE,
    email           TEXT NOT NULL,
    first_name      TEXT NOT NULL,
    last_name       TEXT NOT NULL,
    password_hash   TEXT NOT NULL,
    roles           TEXT[] NOT NULL DEFAULT '{}',
    department      TEXT,
    attributes      JSONB NOT NULL DEFAULT '{}',
    status          TEXT NOT NULL DEFAULT 'ACTIVE',
    force_password_change BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS roles (
    id              UUID PRIMARY KEY,
    name            TEXT NOT NULL UNIQUE,
    description     TEXT,
    permissions     TEXT[] NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS password_reset_tokens (
    id              UUID PRIMARY KEY,
    user_id         UUID NOT NULL,
    tenant_id       TEXT NOT NULL,
    token           TEXT NOT NULL UNIQUE,
    expires_at      TIMESTAMPTZ NOT NULL,
    used            BOOLEAN NOT NULL DEFAULT FALSE,
    used_at         TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reset_tokens_user ON password_reset_tokens (user_id);

CREATE TABLE IF NOT EXISTS password_history (
    id              UUID PRIMARY KEY,
    user_id         UUID NOT NULL,
    password_hash   TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_password_history_user ON password_history (user_id);

CREATE TABLE IF NOT EXISTS counters (
    name            TEXT PRIMARY KEY,
    seq             BIGINT NOT NULL DEFAULT 0,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS patients (
    id              UUID PRIMARY KEY,
    patient_id      TEXT NOT NULL UNIQUE,
    first_name      TEXT NOT NULL,
    last_name       TEXT,
    date_of_birth   DATE,
    gender          TEXT,
    blood_group     TEXT,
    contact_phone   TEXT NOT NULL,
    contact_email   TEXT,
    address         TEXT,
    emergency_contact_name  TEXT,
    emergency_contact_phone TEXT,
    patient_type    TEXT NOT NULL,
    department      TEXT,
    primary_doctor_id TEXT,
    photo_url       TEXT,
    extra_info      JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_patients_department ON patients (department);

CREATE TABLE IF NOT EXISTS prescriptions (
    id              UUID PRIMARY KEY,
    prescription_id TEXT NOT NULL UNIQUE,
    patient_id      TEXT NOT NULL,
    doctor_id       TEXT NOT NULL,
    doctor_name     TEXT,
    department      TEXT,
    visit_date      TIMESTAMPTZ NOT NULL,
    medicines       JSONB NOT NULL DEFAULT '[]',
    notes           TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_prescriptions_patient ON prescriptions (patient_id);

CREATE TABLE IF NOT EXISTS lab_requests (
    id              UUID PRIMARY KEY,
    request_id      TEXT NOT NULL UNIQUE,
    patient_id      TEXT NOT NULL,
    type            TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'PENDING',
    requested_by    TEXT,
    notes           TEXT,
    result_file_url TEXT,
    result_comments TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_lab_requests_patient ON lab_requests (patient_id);

CREATE TABLE IF NOT EXISTS vitals (
    id              UUID PRIMARY KEY,
    patient_id      TEXT NOT NULL,
    recorded_by     TEXT,
    temperature     DOUBLE PRECISION,
    pulse           INTEGER,
    bp_systolic     INTEGER,
    bp_diastolic    INTEGER,
    respiratory_rate INTEGER,
    spo2            INTEGER,
    notes           TEXT,
    recorded_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_vitals_patient ON vitals (patient_id);

CREATE TABLE IF NOT EXISTS appointments (
    id              UUID PRIMARY KEY,
    appointment_id  TEXT NOT NULL UNIQUE,
    patient_id      TEXT NOT NULL,
    doctor_id       TEXT NOT NULL,
    department      TEXT,
    date            TIMESTAMPTZ NOT NULL,
    status          TEXT NOT NULL DEFAULT 'SCHEDULED',
    type            TEXT NOT NULL DEFAULT 'OPD',
    notes           TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id);
CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments (date);
`

func ensureMasterSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, masterDDL)
	return err
}

// EnsureTenantSchema creates the tenant schema and its tables if they do not
// exist. The pool's search_path must already be pinned to the schema so the
// unqualified DDL lands inside it.
func EnsureTenantSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	if _, err := pool.Exec(ctx, tenantDDL); err != nil {
		return fmt.Errorf("create tenant tables in %s: %w", schema, err)
	}
	return nil
}
