package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const appointmentCols = `id, appointment_id, patient_id, doctor_id, department, date, status, type,
	notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a           Appointment
		dept, notes *string
	)
	err := row.Scan(
		&a.ID, &a.AppointmentID, &a.PatientID, &a.DoctorID, &dept, &a.Date, &a.Status, &a.Type,
		&notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "Appointment not found")
	}
	if err != nil {
		return nil, err
	}
	if dept != nil {
		a.Department = *dept
	}
	if notes != nil {
		a.Notes = *notes
	}
	return &a, nil
}

func (p *repoPG) Create(ctx context.Context, a *Appointment) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	a.ID = uuid.New()
	return pool.QueryRow(ctx, `
		INSERT INTO appointments (id, appointment_id, patient_id, doctor_id, department, date, status, type, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.AppointmentID, a.PatientID, a.DoctorID, a.Department, a.Date, a.Status, a.Type, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (p *repoPG) GetByAppointmentID(ctx context.Context, appointmentID string) (*Appointment, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanAppointment(pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE appointment_id = $1`, appointmentID))
}

func (p *repoPG) Update(ctx context.Context, a *Appointment) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		UPDATE appointments SET
			doctor_id=$2, department=$3, date=$4, status=$5, type=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.DoctorID, a.Department, a.Date, a.Status, a.Type, a.Notes,
	)
	return err
}

func (p *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
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
	if f.DoctorID != "" {
		add(fmt.Sprintf("doctor_id = $%d", idx), f.DoctorID)
	}
	if f.Status != "" {
		add(fmt.Sprintf("status = $%d", idx), f.Status)
	}
	if f.Date != nil {
		dayStart := f.Date.Truncate(24 * time.Hour)
		add(fmt.Sprintf("date >= $%d AND date < $%d", idx, idx+1), dayStart, dayStart.Add(24*time.Hour))
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY date ASC LIMIT $%d OFFSET $%d`,
			appointmentCols, where, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
