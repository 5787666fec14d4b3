package user

import (
	"context"
)

// ListFilter narrows List results. Zero values mean no constraint.
type ListFilter struct {
	Role   string
	Status Status
	Search string
}

// Repository is the per-tenant user store. Implementations read their pool
// from the request context so a single instance serves every tenant.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByRole(ctx context.Context, role string) (bool, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error)
}

// RoleRepository is the per-tenant role registry.
type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	GetByNames(ctx context.Context, names []string) ([]*Role, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*Role, error)
}
