package patient

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

const patientCols = `id, patient_id, first_name, last_name, date_of_birth, gender, blood_group,
	contact_phone, contact_email, address, emergency_contact_name, emergency_contact_phone,
	patient_type, department, primary_doctor_id, photo_url, extra_info, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var (
		p                         Patient
		lastName, gender, blood   *string
		email, address            *string
		emName, emPhone           *string
		department, doctor, photo *string
	)
	err := row.Scan(
		&p.ID, &p.PatientID, &p.FirstName, &lastName, &p.DateOfBirth, &gender, &blood,
		&p.ContactPhone, &email, &address, &emName, &emPhone,
		&p.PatientType, &department, &doctor, &photo, &p.ExtraInfo, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.KindNotFound, "Patient not found")
	}
	if err != nil {
		return nil, err
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&p.LastName, lastName)
	assign(&p.Gender, gender)
	assign(&p.BloodGroup, blood)
	assign(&p.ContactEmail, email)
	assign(&p.Address, address)
	assign(&p.EmergencyContactName, emName)
	assign(&p.EmergencyContactPhone, emPhone)
	assign(&p.Department, department)
	assign(&p.PrimaryDoctorID, doctor)
	assign(&p.PhotoURL, photo)
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	pool, err := conn(ctx)
	if err != nil {
		return err
	}
	p.ID = uuid.New()
	if p.ExtraInfo == nil {
		p.ExtraInfo = map[string]interface{}{}
	}
	return pool.QueryRow(ctx, `
		INSERT INTO patients (
			id, patient_id, first_name, last_name, date_of_birth, gender, blood_group,
			contact_phone, contact_email, address, emergency_contact_name, emergency_contact_phone,
			patient_type, department, primary_doctor_id, photo_url, extra_info
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.ContactPhone, p.ContactEmail, p.Address, p.EmergencyContactName, p.EmergencyContactPhone,
		p.PatientType, p.Department, p.PrimaryDoctorID, p.PhotoURL, p.ExtraInfo,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	pool, err := conn(ctx)
	if err != nil {
		return nil, err
	}
	return scanPatient(pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, patientID))
}

func (r *repoPG) List(ctx context.Context, f Filter, scope auth.Scope, limit, offset int) ([]*Patient, int, error) {
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
	if f.Phone != "" {
		add(fmt.Sprintf("contact_phone ILIKE $%d", idx), "%"+f.Phone+"%")
	}
	if f.Email != "" {
		add(fmt.Sprintf("contact_email ILIKE $%d", idx), "%"+f.Email+"%")
	}
	if f.PatientType != "" {
		add(fmt.Sprintf("patient_type = $%d", idx), f.PatientType)
	}
	if f.DoctorID != "" {
		add(fmt.Sprintf("primary_doctor_id = $%d", idx), f.DoctorID)
	}
	if f.Name != "" {
		add(fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d)", idx, idx), "%"+f.Name+"%")
	}
	if f.FromDate != nil {
		add(fmt.Sprintf("created_at >= $%d", idx), *f.FromDate)
	}
	if f.ToDate != nil {
		add(fmt.Sprintf("created_at <= $%d", idx), *f.ToDate)
	}

	// A restricted scope overrides any requested department filter.
	if scope.Restricted() {
		add(fmt.Sprintf("department = $%d", idx), scope.Department)
	} else if f.Department != "" {
		add(fmt.Sprintf("department = $%d", idx), f.Department)
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM patients WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			patientCols, where, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) NextSequence(ctx context.Context, name string) (int64, error) {
	pool, err := conn(ctx)
	if err != nil {
		return 0, err
	}
	return db.NextSequence(ctx, pool, name)
}
