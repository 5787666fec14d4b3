package lab

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

type CreateInput struct {
	PatientID string `json:"patientId"`
	Type      Type   `json:"type"`
	Notes     string `json:"notes"`
}

type ResultInput struct {
	ResultFileURL  string `json:"resultFileUrl"`
	ResultComments string `json:"resultComments"`
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create opens a lab request in PENDING state with a millisecond
// timestamp identifier.
func (s *Service) Create(ctx context.Context, requestedBy string, in CreateInput) (*Request, error) {
	if in.PatientID == "" {
		return nil, apperr.E(apperr.KindValidation, "patientId is required")
	}
	if !ValidType(in.Type) {
		return nil, apperr.E(apperr.KindValidation, "type must be XRAY, BLOOD_TEST or VACCINATION")
	}

	r := &Request{
		RequestID:   fmt.Sprintf("LAB-%d", s.now().UnixMilli()),
		PatientID:   in.PatientID,
		Type:        in.Type,
		Status:      StatusPending,
		RequestedBy: requestedBy,
		Notes:       in.Notes,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create lab request: %w", err)
	}

	s.logger.Info().Str("request_id", r.RequestID).Str("patient_id", r.PatientID).Msg("lab request created")
	return r, nil
}

// UpdateResult attaches the result and completes the request.
func (s *Service) UpdateResult(ctx context.Context, requestID string, in ResultInput) (*Request, error) {
	r, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	r.Status = StatusCompleted
	r.ResultFileURL = in.ResultFileURL
	r.ResultComments = in.ResultComments
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update lab result: %w", err)
	}

	s.logger.Info().Str("request_id", r.RequestID).Msg("lab request completed")
	return r, nil
}

func (s *Service) Get(ctx context.Context, requestID string) (*Request, error) {
	return s.repo.GetByRequestID(ctx, requestID)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Request, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
