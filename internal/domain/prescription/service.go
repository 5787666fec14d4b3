package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

const prescriptionCounter = "PRESCRIPTION"

// PatientDirectory resolves patients in the same tenant store. Backed by
// the patient service.
type PatientDirectory interface {
	GetByPatientID(ctx context.Context, patientID string) (*patient.Patient, error)
}

type CreateInput struct {
	PatientID string     `json:"patientId"`
	VisitDate string     `json:"visitDate"`
	Medicines []Medicine `json:"medicines"`
	Notes     string     `json:"notes"`
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	logger   zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, logger zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, logger: logger}
}

// Create issues a prescription. The patient must exist, and a doctor
// may only prescribe inside their own department. The prescription
// inherits the patient's department.
func (s *Service) Create(ctx context.Context, caller *auth.Identity, in CreateInput) (*Prescription, error) {
	if in.PatientID == "" {
		return nil, apperr.E(apperr.KindValidation, "patientId is required")
	}
	if len(in.Medicines) == 0 {
		return nil, apperr.E(apperr.KindValidation, "At least one medicine is required")
	}
	for _, m := range in.Medicines {
		if m.Name == "" || m.Dosage == "" || m.Frequency == "" || m.Duration == "" {
			return nil, apperr.E(apperr.KindValidation, "Each medicine needs name, dosage, frequency and duration")
		}
	}

	pt, err := s.patients.GetByPatientID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	if caller.HasRole(auth.RoleDoctor) &&
		caller.Department != "" && pt.Department != "" &&
		caller.Department != pt.Department {
		return nil, apperr.E(apperr.KindForbidden,
			"Doctor is not allowed to prescribe for patients in a different department")
	}

	visitDate := time.Now()
	if in.VisitDate != "" {
		parsed, perr := parseDate(in.VisitDate)
		if perr != nil {
			return nil, perr
		}
		visitDate = parsed
	}

	seq, err := s.repo.NextSequence(ctx, prescriptionCounter)
	if err != nil {
		return nil, fmt.Errorf("next prescription sequence: %w", err)
	}

	doctorName := strings.TrimSpace(caller.FirstName + " " + caller.LastName)
	if doctorName == "" {
		doctorName = caller.Username
	}

	p := &Prescription{
		PrescriptionID: fmt.Sprintf("%s-RX-%d", caller.TenantID, seq),
		PatientID:      pt.PatientID,
		DoctorID:       caller.UserID,
		DoctorName:     doctorName,
		Department:     pt.Department,
		VisitDate:      visitDate,
		Medicines:      in.Medicines,
		Notes:          in.Notes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.logger.Info().
		Str("prescription_id", p.PrescriptionID).
		Str("patient_id", p.PatientID).
		Msg("prescription issued")
	return p, nil
}

// Get returns a prescription, refusing cross-department reads for
// scoped doctors.
func (s *Service) Get(ctx context.Context, scope auth.Scope, prescriptionID string) (*Prescription, error) {
	p, err := s.repo.GetByPrescriptionID(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(p.Department) {
		return nil, apperr.E(apperr.KindForbidden,
			"Doctor is not allowed to view prescriptions of other departments")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.List(ctx, f, scope, limit, offset)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.E(apperr.KindValidation, "Invalid date format, expected YYYY-MM-DD")
}
