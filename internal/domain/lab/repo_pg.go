package lab

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct{}

func NewRepo() Repository {
	return &repoPG{}
}

func conn(ctx context.Context) (*pgxpool.Pool, error) {
	pool := db.PoolFromContext(ctx)
	if pool == nil {
		return nil, apperr.E(apperr.KindInternal, "tenant store not resolved")
	}
	return pool, nil
}

const requestCols = `id, request_id, patient_id, type, status, requested_by, notes,
	result_file_url, result_comments, created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var (
		r                            Request
		requestedBy, notes           *string
		resultFileURL, resultComment *string
	)
	err := row.Scan(
		&r.ID, &r.RequestID, &r.PatientID, &r.Type, &r.Status, &requestedBy, &notes,
		&resultFileURL, &resultComment, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "Lab request not found")
	}
	if err != nil {
		return nil, err
	}
	if requestedBy != nil {
		r.RequestedBy = *requestedBy
	}
	if notes != nil {
		r.Notes = *notes
	}
	if resultFileURL != nil {
		r.ResultFileURL = *resultFileURL
	}
	if resultComment != nil {
		r.ResultComments = *resultComment
	}
	return &r, nil
}

func (p *repoPG) Create(ctx context.Context, r *Request) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	r.ID = uuid.New()
	return pool.QueryRow(ctx, `
		INSERT INTO lab_requests (id, request_id, patient_id, type, status, requested_by, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		r.ID, r.RequestID, r.PatientID, r.Type, r.Status, r.RequestedBy, r.Notes,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (p *repoPG) GetByRequestID(ctx context.Context, requestID string) (*Request, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanRequest(pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM lab_requests WHERE request_id = $1`, requestID))
}

func (p *repoPG) Update(ctx context.Context, r *Request) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		UPDATE lab_requests SET
			status=$2, result_file_url=$3, result_comments=$4, updated_at=NOW()
		WHERE id = $1`,
		r.ID, r.Status, r.ResultFileURL, r.ResultComments,
	)
	return err
}

func (p *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Request, int, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := "TRUE"
	args := []interface{}{}
	idx := 1
	add := func(clause string, vals ...interface{}) {
		where += " AND " + clause
		args = append(args, vals...)
		idx += len(vals)
	}
	if f.PatientID != "" {
		add(fmt.Sprintf("patient_id = $%d", idx), f.PatientID)
	}
	if f.Type != "" {
		add(fmt.Sprintf("type = $%d", idx), f.Type)
	}
	if f.Status != "" {
		add(fmt.Sprintf("status = $%d", idx), f.Status)
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM lab_requests WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM lab_requests WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			requestCols, where, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
