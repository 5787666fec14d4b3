package patient

import (
	"context"
	"time"

	"github.com/hms/hms/internal/platform/auth"
)

// Filter narrows List results. Zero values mean no constraint;
// FromDate/ToDate bound the creation time inclusively.
type Filter struct {
	PatientID   string
	Name        string
	Phone       string
	Email       string
	PatientType Type
	Department  string
	DoctorID    string
	FromDate    *time.Time
	ToDate      *time.Time
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)
	List(ctx context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Patient, int, error)
	// NextSequence advances the tenant's named counter.
	NextSequence(ctx context.Context, name string) (int64, error)
}
