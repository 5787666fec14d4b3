package lab

import (
	"context"
)

type Filter struct {
	PatientID string
	Type      Type
	Status    Status
}

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	Update(ctx context.Context, r *Request) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Request, int, error)
}
