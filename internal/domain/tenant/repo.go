package tenant

import (
	"context"
)

// Repository is the master-database persistence interface for tenants.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)
	GetByVerificationToken(ctx context.Context, token string) (*Tenant, error)
	ExistsByDomainOrLicense(ctx context.Context, domain, license string) (bool, error)
	Update(ctx context.Context, t *Tenant) error
	List(ctx context.Context, limit, offset int) ([]*Tenant, int, error)
}
