package lab

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeXRay        Type = "XRAY"
	TypeBloodTest   Type = "BLOOD_TEST"
	TypeVaccination Type = "VACCINATION"
)

func ValidType(t Type) bool {
	switch t {
	case TypeXRay, TypeBloodTest, TypeVaccination:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Request is a lab work order. RequestID is time-derived
// (`LAB-{unix-ms}`), not sequential.
type Request struct {
	ID             uuid.UUID `db:"id" json:"-"`
	RequestID      string    `db:"request_id" json:"requestId"`
	PatientID      string    `db:"patient_id" json:"patientId"`
	Type           Type      `db:"type" json:"type"`
	Status         Status    `db:"status" json:"status"`
	RequestedBy    string    `db:"requested_by" json:"requestedBy,omitempty"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
	ResultFileURL  string    `db:"result_file_url" json:"resultFileUrl,omitempty"`
	ResultComments string    `db:"result_comments" json:"resultComments,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
