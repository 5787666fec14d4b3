package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct{}

func NewRepo() Repository {
	return &repoPG{}
}

// conn returns the tenant pool carried by the request context. Every
// route that reaches a user repository runs behind the tenant
// middleware, so a missing pool is a programming error.
func conn(ctx context.Context) (*pgxpool.Pool, error) {
	pool := db.PoolFromContext(ctx)
	if pool == nil {
		return nil, apperr.E(apperr.KindInternal, "tenant store not resolved")
	}
	return pool, nil
}

const userCols = `id, username, email, first_name, last_name, password_hash, roles,
	department, attributes, status, force_password_change, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var (
		u    User
		dept *string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Roles,
		&dept, &u.Attributes, &u.Status, &u.ForcePasswordChange, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	if dept != nil {
		u.Department = *dept
	}
	return &u, nil
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	if u.Attributes == nil {
		u.Attributes = map[string]interface{}{}
	}
	return pool.QueryRow(ctx, `
		INSERT INTO users (
			id, username, email, first_name, last_name, password_hash, roles,
			department, attributes, status, force_password_change
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Roles,
		u.Department, u.Attributes, u.Status, u.ForcePasswordChange,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*User, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (r *repoPG) GetByUsernameOrEmail(ctx context.Context, identifier string) (*User, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, identifier))
}

func (r *repoPG) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	pool, err := conn(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *repoPG) ExistsByRole(ctx context.Context, role string) (bool, error) {
	pool, err := conn(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE $1 = ANY(roles))`, role).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		UPDATE users SET
			email=$2, first_name=$3, last_name=$4, password_hash=$5, roles=$6,
			department=$7, attributes=$8, status=$9, force_password_change=$10, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Roles,
		u.Department, u.Attributes, u.Status, u.ForcePasswordChange,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := "TRUE"
	args := []interface{}{}
	idx := 1
	if f.Role != "" {
		where += fmt.Sprintf(" AND $%d = ANY(roles)", idx)
		args = append(args, f.Role)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (username ILIKE $%d OR email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)", idx, idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, userCols, where, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// -- Role repository --

type roleRepoPG struct{}

func NewRoleRepo() RoleRepository {
	return &roleRepoPG{}
}

const roleCols = `id, name, description, permissions, created_at, updated_at`

func scanRole(row pgx.Row) (*Role, error) {
	var (
		role Role
		desc *string
	)
	err := row.Scan(&role.ID, &role.Name, &desc, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "Role not found")
	}
	if err != nil {
		return nil, err
	}
	if desc != nil {
		role.Description = *desc
	}
	return &role, nil
}

func (r *roleRepoPG) Create(ctx context.Context, role *Role) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	return pool.QueryRow(ctx, `
		INSERT INTO roles (id, name, description, permissions)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		role.ID, role.Name, role.Description, role.Permissions,
	).Scan(&role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepoPG) GetByNames(ctx context.Context, names []string) ([]*Role, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `SELECT `+roleCols+` FROM roles WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *roleRepoPG) Count(ctx context.Context) (int, error) {
	pool, err := conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n)
	return n, err
}

func (r *roleRepoPG) List(ctx context.Context) ([]*Role, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `SELECT `+roleCols+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
