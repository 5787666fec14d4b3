package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Type string

const (
	TypeOPD      Type = "OPD"
	TypeFollowUp Type = "FOLLOW_UP"
)

func ValidType(t Type) bool {
	return t == TypeOPD || t == TypeFollowUp
}

// Appointment books a patient with a doctor. AppointmentID is
// time-derived (`APT-{unix-ms}`).
type Appointment struct {
	ID            uuid.UUID `db:"id" json:"-"`
	AppointmentID string    `db:"appointment_id" json:"appointmentId"`
	PatientID     string    `db:"patient_id" json:"patientId"`
	DoctorID      string    `db:"doctor_id" json:"doctorId"`
	Department    string    `db:"department" json:"department,omitempty"`
	Date          time.Time `db:"date" json:"date"`
	Status        Status    `db:"status" json:"status"`
	Type          Type      `db:"type" json:"type"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
