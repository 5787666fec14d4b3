package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

type CreateInput struct {
	PatientID  string `json:"patientId"`
	DoctorID   string `json:"doctorId"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Type       Type   `json:"type"`
	Notes      string `json:"notes"`
}

type UpdateInput struct {
	DoctorID   *string `json:"doctorId"`
	Department *string `json:"department"`
	Date       *string `json:"date"`
	Status     *Status `json:"status"`
	Type       *Type   `json:"type"`
	Notes      *string `json:"notes"`
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.PatientID == "" || in.DoctorID == "" || in.Date == "" {
		return nil, apperr.E(apperr.KindValidation, "patientId, doctorId and date are required")
	}
	date, err := parseDateTime(in.Date)
	if err != nil {
		return nil, err
	}
	typ := in.Type
	if typ == "" {
		typ = TypeOPD
	}
	if !ValidType(typ) {
		return nil, apperr.E(apperr.KindValidation, "type must be OPD or FOLLOW_UP")
	}

	a := &Appointment{
		AppointmentID: fmt.Sprintf("APT-%d", s.now().UnixMilli()),
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		Department:    in.Department,
		Date:          date,
		Status:        StatusScheduled,
		Type:          typ,
		Notes:         in.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", a.AppointmentID).
		Str("patient_id", a.PatientID).
		Msg("appointment scheduled")
	return a, nil
}

func (s *Service) Get(ctx context.Context, appointmentID string) (*Appointment, error) {
	return s.repo.GetByAppointmentID(ctx, appointmentID)
}

func (s *Service) Update(ctx context.Context, appointmentID string, in UpdateInput) (*Appointment, error) {
	a, err := s.repo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if in.DoctorID != nil {
		a.DoctorID = *in.DoctorID
	}
	if in.Department != nil {
		a.Department = *in.Department
	}
	if in.Date != nil {
		date, err := parseDateTime(*in.Date)
		if err != nil {
			return nil, err
		}
		a.Date = date
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, apperr.E(apperr.KindValidation, "status must be SCHEDULED, COMPLETED or CANCELLED")
		}
		a.Status = *in.Status
	}
	if in.Type != nil {
		if !ValidType(*in.Type) {
			return nil, apperr.E(apperr.KindValidation, "type must be OPD or FOLLOW_UP")
		}
		a.Type = *in.Type
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.E(apperr.KindValidation, "Invalid date format, expected RFC 3339 or YYYY-MM-DD")
}
