package appointment

import (
	"context"
	"time"
)

// Filter narrows List results. Date, when set, matches the whole day.
type Filter struct {
	PatientID string
	DoctorID  string
	Status    Status
	Date      *time.Time
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByAppointmentID(ctx context.Context, appointmentID string) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
}
