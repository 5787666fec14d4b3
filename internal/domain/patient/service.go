package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// patientCounter names the per-tenant sequence behind patient IDs.
const patientCounter = "PATIENT"

type CreateInput struct {
	FirstName             string                 `json:"firstName"`
	LastName              string                 `json:"lastName"`
	DateOfBirth           string                 `json:"dateOfBirth"`
	Gender                string                 `json:"gender"`
	BloodGroup            string                 `json:"bloodGroup"`
	ContactPhone          string                 `json:"contactPhone"`
	ContactEmail          string                 `json:"contactEmail"`
	Address               string                 `json:"address"`
	EmergencyContactName  string                 `json:"emergencyContactName"`
	EmergencyContactPhone string                 `json:"emergencyContactPhone"`
	PatientType           Type                   `json:"patientType"`
	Department            string                 `json:"department"`
	PrimaryDoctorID       string                 `json:"primaryDoctorId"`
	PhotoURL              string                 `json:"photoUrl"`
	ExtraInfo             map[string]interface{} `json:"extraInfo"`
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create registers a patient and assigns the sequential
// `{tenant}-P-{n}` identifier from the tenant's counter.
func (s *Service) Create(ctx context.Context, tenantID string, in CreateInput) (*Patient, error) {
	if in.FirstName == "" || in.ContactPhone == "" || in.PatientType == "" {
		return nil, apperr.E(apperr.KindValidation, "firstName, contactPhone and patientType are required")
	}
	if in.PatientType != TypeOPD && in.PatientType != TypeIPD {
		return nil, apperr.E(apperr.KindValidation, "patientType must be OPD or IPD")
	}

	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return nil, err
	}

	seq, err := s.repo.NextSequence(ctx, patientCounter)
	if err != nil {
		return nil, fmt.Errorf("next patient sequence: %w", err)
	}

	p := &Patient{
		PatientID:             fmt.Sprintf("%s-P-%d", tenantID, seq),
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		DateOfBirth:           dob,
		Gender:                in.Gender,
		BloodGroup:            in.BloodGroup,
		ContactPhone:          in.ContactPhone,
		ContactEmail:          in.ContactEmail,
		Address:               in.Address,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
		PatientType:           in.PatientType,
		Department:            in.Department,
		PrimaryDoctorID:       in.PrimaryDoctorID,
		PhotoURL:              in.PhotoURL,
		ExtraInfo:             in.ExtraInfo,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().Str("patient_id", p.PatientID).Msg("patient registered")
	return p, nil
}

func (s *Service) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

// List applies the caller's department scope on top of the requested
// filters.
func (s *Service) List(ctx context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, scope, limit, offset)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.E(apperr.KindValidation, "Invalid date format, expected YYYY-MM-DD")
}
