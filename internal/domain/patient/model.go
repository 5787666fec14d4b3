package patient

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeOPD Type = "OPD"
	TypeIPD Type = "IPD"
)

type Patient struct {
	ID                    uuid.UUID              `db:"id" json:"-"`
	PatientID             string                 `db:"patient_id" json:"patientId"`
	FirstName             string                 `db:"first_name" json:"firstName"`
	LastName              string                 `db:"last_name" json:"lastName,omitempty"`
	DateOfBirth           *time.Time             `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender                string                 `db:"gender" json:"gender,omitempty"`
	BloodGroup            string                 `db:"blood_group" json:"bloodGroup,omitempty"`
	ContactPhone          string                 `db:"contact_phone" json:"contactPhone"`
	ContactEmail          string                 `db:"contact_email" json:"contactEmail,omitempty"`
	Address               string                 `db:"address" json:"address,omitempty"`
	EmergencyContactName  string                 `db:"emergency_contact_name" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string                 `db:"emergency_contact_phone" json:"emergencyContactPhone,omitempty"`
	PatientType           Type                   `db:"patient_type" json:"patientType"`
	Department            string                 `db:"department" json:"department,omitempty"`
	PrimaryDoctorID       string                 `db:"primary_doctor_id" json:"primaryDoctorId,omitempty"`
	PhotoURL              string                 `db:"photo_url" json:"photoUrl,omitempty"`
	ExtraInfo             map[string]interface{} `db:"extra_info" json:"extraInfo,omitempty"`
	CreatedAt             time.Time              `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time              `db:"updated_at" json:"updatedAt"`
}
