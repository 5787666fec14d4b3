package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

// repoPG persists tenants in the master database. Unlike the clinical
// repositories it holds its pool directly; tenant records exist before
// any tenant store does.
type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const tenantCols = `id, name, address, contact_email, contact_phone, license_number, domain,
	status, supported_languages, verification_token, created_at, updated_at`

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Address, &t.ContactEmail, &t.ContactPhone, &t.LicenseNumber, &t.Domain,
		&t.Status, &t.SupportedLanguages, &t.VerificationToken, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "Hospital not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) Create(ctx context.Context, t *Tenant) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tenants (
			id, name, address, contact_email, contact_phone, license_number, domain,
			status, supported_languages, verification_token
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Address, t.ContactEmail, t.ContactPhone, t.LicenseNumber, t.Domain,
		t.Status, t.SupportedLanguages, t.VerificationToken,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Tenant, error) {
	return scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id = $1`, id))
}

func (r *repoPG) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE domain = $1`, domain))
}

func (r *repoPG) GetByVerificationToken(ctx context.Context, token string) (*Tenant, error) {
	return scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE verification_token = $1`, token))
}

func (r *repoPG) ExistsByDomainOrLicense(ctx context.Context, domain, license string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE domain = $1 OR license_number = $2)`,
		domain, license,
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, t *Tenant) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tenants SET
			name=$2, address=$3, contact_email=$4, contact_phone=$5,
			status=$6, supported_languages=$7, verification_token=$8, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Address, t.ContactEmail, t.ContactPhone,
		t.Status, t.SupportedLanguages, t.VerificationToken,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+tenantCols+` FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}
