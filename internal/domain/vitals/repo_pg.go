package vitals

import (
	"context"
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

const readingCols = `id, patient_id, recorded_by, temperature, pulse, bp_systolic, bp_diastolic,
	respiratory_rate, spo2, notes, recorded_at, created_at`

func scanReading(row pgx.Row) (*Reading, error) {
	var (
		r                 Reading
		recordedBy, notes *string
	)
	err := row.Scan(
		&r.ID, &r.PatientID, &recordedBy, &r.Temperature, &r.Pulse, &r.BPSystolic, &r.BPDiastolic,
		&r.RespiratoryRate, &r.SpO2, &notes, &r.RecordedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recordedBy != nil {
		r.RecordedBy = *recordedBy
	}
	if notes != nil {
		r.Notes = *notes
	}
	return &r, nil
}

func (p *repoPG) Create(ctx context.Context, r *Reading) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	r.ID = uuid.New()
	return pool.QueryRow(ctx, `
		INSERT INTO vitals (
			id, patient_id, recorded_by, temperature, pulse, bp_systolic, bp_diastolic,
			respiratory_rate, spo2, notes, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		r.ID, r.PatientID, r.RecordedBy, r.Temperature, r.Pulse, r.BPSystolic, r.BPDiastolic,
		r.RespiratoryRate, r.SpO2, r.Notes, r.RecordedAt,
	).Scan(&r.CreatedAt)
}

func (p *repoPG) List(ctx context.Context, patientID string, limit, offset int) ([]*Reading, int, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := "TRUE"
	args := []interface{}{}
	idx := 1
	if patientID != "" {
		where = "patient_id = $1"
		args = append(args, patientID)
		idx++
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM vitals WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM vitals WHERE %s ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d`,
			readingCols, where, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
