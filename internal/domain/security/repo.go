package security

import (
	"context"

	"github.com/google/uuid"
)

// TokenRepository stores reset tokens in the tenant store.
type TokenRepository interface {
	Create(ctx context.Context, t *ResetToken) error
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	MarkUsed(ctx context.Context, t *ResetToken) error
}

// HistoryRepository keeps the trailing password hashes per user.
type HistoryRepository interface {
	// Recent returns up to limit hashes, newest first.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
	// Add records a retired hash and prunes entries beyond keep.
	Add(ctx context.Context, userID uuid.UUID, hash string, keep int) error
}
