package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
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

const prescriptionCols = `id, prescription_id, patient_id, doctor_id, doctor_name, department,
	visit_date, medicines, notes, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var (
		p                      Prescription
		doctorName, dept, note *string
	)
	err := row.Scan(
		&p.ID, &p.PrescriptionID, &p.PatientID, &p.DoctorID, &doctorName, &dept,
		&p.VisitDate, &p.Medicines, &note, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "Prescription not found")
	}
	if err != nil {
		return nil, err
	}
	if doctorName != nil {
		p.DoctorName = *doctorName
	}
	if dept != nil {
		p.Department = *dept
	}
	if note != nil {
		p.Notes = *note
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	p.ID = uuid.New()
	return pool.QueryRow(ctx, `
		INSERT INTO prescriptions (
			id, prescription_id, patient_id, doctor_id, doctor_name, department,
			visit_date, medicines, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.PrescriptionID, p.PatientID, p.DoctorID, p.DoctorName, p.Department,
		p.VisitDate, p.Medicines, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByPrescriptionID(ctx context.Context, prescriptionID string) (*Prescription, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanPrescription(pool.QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE prescription_id = $1`, prescriptionID))
}

func (r *repoPG) List(ctx context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Prescription, int, error) {
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
	if f.FromDate != nil {
		add(fmt.Sprintf("visit_date >= $%d", idx), *f.FromDate)
	}
	if f.ToDate != nil {
		add(fmt.Sprintf("visit_date <= $%d", idx), *f.ToDate)
	}
	if scope.Restricted() {
		add(fmt.Sprintf("department = $%d", idx), scope.Department)
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM prescriptions WHERE %s ORDER BY visit_date DESC LIMIT $%d OFFSET $%d`,
			prescriptionCols, where, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repoPG) NextSequence(ctx context.Context, name string) (int64, error) {
	pool, err := conn(ctx)
	if err != nil {
		return 0, err
	}
	return db.NextSequence(ctx, pool, name)
}
