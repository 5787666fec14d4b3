package prescription

import (
	"time"

	"github.com/google/uuid"
)

type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription records an issued set of medicines. Department is copied
// from the patient at creation so visibility checks do not depend on
// later patient moves.
type Prescription struct {
	ID             uuid.UUID  `db:"id" json:"-"`
	PrescriptionID string     `db:"prescription_id" json:"prescriptionId"`
	PatientID      string     `db:"patient_id" json:"patientId"`
	DoctorID       string     `db:"doctor_id" json:"doctorId"`
	DoctorName     string     `db:"doctor_name" json:"doctorName,omitempty"`
	Department     string     `db:"department" json:"department,omitempty"`
	VisitDate      time.Time  `db:"visit_date" json:"visitDate"`
	Medicines      []Medicine `db:"medicines" json:"medicines"`
	Notes          string     `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}
