package security

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

func conn(ctx context.Context) (*pgxpool.Pool, error) {
	pool := db.PoolFromContext(ctx)
	if pool == nil {
		return nil, apperr.E(apperr.KindInternal, "tenant store not resolved")
	}
	return pool, nil
}

type tokenRepoPG struct{}

func NewTokenRepo() TokenRepository {
	return &tokenRepoPG{}
}

func (r *tokenRepoPG) Create(ctx context.Context, t *ResetToken) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	return pool.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, tenant_id, token, expires_at, used)
		VALUES ($1,$2,$3,$4,$5,FALSE)
		RETURNING created_at`,
		t.ID, t.UserID, t.TenantID, t.Token, t.ExpiresAt,
	).Scan(&t.CreatedAt)
}

func (r *tokenRepoPG) GetByToken(ctx context.Context, token string) (*ResetToken, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	var t ResetToken
	err = pool.QueryRow(ctx, `
		SELECT id, user_id, tenant_id, token, expires_at, used, used_at, created_at
		FROM password_reset_tokens WHERE token = $1`, token,
	).Scan(&t.ID, &t.UserID, &t.TenantID, &t.Token, &t.ExpiresAt, &t.Used, &t.UsedAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindValidation, "Invalid or expired reset token")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepoPG) MarkUsed(ctx context.Context, t *ResetToken) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	// The used guard makes redemption single-shot even under a race.
	tag, err := pool.Exec(ctx, `
		UPDATE password_reset_tokens SET used = TRUE, used_at = NOW()
		WHERE id = $1 AND used = FALSE`, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.KindValidation, "Invalid or expired reset token")
	}
	t.Used = true
	return nil
}

type historyRepoPG struct{}

func NewHistoryRepo() HistoryRepository {
	return &historyRepoPG{}
}

func (r *historyRepoPG) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `
		SELECT password_hash FROM password_history
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

func (r *historyRepoPG) Add(ctx context.Context, userID uuid.UUID, hash string, keep int) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO password_history (id, user_id, password_hash)
		VALUES ($1,$2,$3)`, uuid.New(), userID, hash); err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		DELETE FROM password_history
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM password_history
			WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
		)`, userID, keep)
	return err
}
