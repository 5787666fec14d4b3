package prescription

import (
	"context"
	"time"

	"github.com/hms/hms/internal/platform/auth"
)

// Filter narrows List results; FromDate/ToDate bound the visit date.
type Filter struct {
	PatientID string
	FromDate  *time.Time
	ToDate    *time.Time
}

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByPrescriptionID(ctx context.Context, prescriptionID string) (*Prescription, error)
	List(ctx context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Prescription, int, error)
	NextSequence(ctx context.Context, name string) (int64, error)
}
