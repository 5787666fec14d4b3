package vitals

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, r *Reading) error
	List(ctx context.Context, patientID string, limit, offset int) ([]*Reading, int, error)
}
