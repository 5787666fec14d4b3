package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one set of vital signs for a patient. Numeric fields are
// pointers so an unmeasured vital is distinguishable from zero.
type Reading struct {
	ID              uuid.UUID `db:"id" json:"-"`
	PatientID       string    `db:"patient_id" json:"patientId"`
	RecordedBy      string    `db:"recorded_by" json:"recordedBy"`
	Temperature     *float64  `db:"temperature" json:"temperature,omitempty"`
	Pulse           *int      `db:"pulse" json:"heartRate,omitempty"`
	BPSystolic      *int      `db:"bp_systolic" json:"bpSystolic,omitempty"`
	BPDiastolic     *int      `db:"bp_diastolic" json:"bpDiastolic,omitempty"`
	RespiratoryRate *int      `db:"respiratory_rate" json:"respiratoryRate,omitempty"`
	SpO2            *int      `db:"spo2" json:"oxygenSaturation,omitempty"`
	Notes           string    `db:"notes" json:"notes,omitempty"`
	RecordedAt      time.Time `db:"recorded_at" json:"recordedAt"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
