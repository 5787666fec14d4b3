package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

type CreateInput struct {
	PatientID       string   `json:"patientId"`
	Temperature     *float64 `json:"temperature"`
	Pulse           *int     `json:"heartRate"`
	BPSystolic      *int     `json:"bpSystolic"`
	BPDiastolic     *int     `json:"bpDiastolic"`
	RespiratoryRate *int     `json:"respiratoryRate"`
	SpO2            *int     `json:"oxygenSaturation"`
	Notes           string   `json:"notes"`
	RecordedAt      string   `json:"recordedAt"`
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, recordedBy string, in CreateInput) (*Reading, error) {
	if in.PatientID == "" {
		return nil, apperr.E(apperr.KindValidation, "patientId is required")
	}
	if recordedBy == "" {
		return nil, apperr.E(apperr.KindValidation, "recordedBy is required")
	}

	recordedAt := s.now()
	if in.RecordedAt != "" {
		t, err := time.Parse(time.RFC3339, in.RecordedAt)
		if err != nil {
			return nil, apperr.E(apperr.KindValidation, "Invalid recordedAt, expected RFC 3339")
		}
		recordedAt = t
	}

	r := &Reading{
		PatientID:       in.PatientID,
		RecordedBy:      recordedBy,
		Temperature:     in.Temperature,
		Pulse:           in.Pulse,
		BPSystolic:      in.BPSystolic,
		BPDiastolic:     in.BPDiastolic,
		RespiratoryRate: in.RespiratoryRate,
		SpO2:            in.SpO2,
		Notes:           in.Notes,
		RecordedAt:      recordedAt,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create vitals: %w", err)
	}

	s.logger.Info().Str("patient_id", r.PatientID).Msg("vitals recorded")
	return r, nil
}

func (s *Service) List(ctx context.Context, patientID string, limit, offset int) ([]*Reading, int, error) {
	return s.repo.List(ctx, patientID, limit, offset)
}
