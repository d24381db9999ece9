// Package records covers medical records: doctor-authored notes with an
// optional prescription, scoped to one patient.
package records

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-hospital-client/gateway"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
)

type Prescription struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Refills    int    `json:"refills"`
}

// MedicalRecord mirrors the backend model. Symptoms travel as "symtoms" on
// the wire.
type MedicalRecord struct {
	ID            int64           `json:"id"`
	PatientID     int64           `json:"patient_id"`
	DoctorID      int64           `json:"doctor_id"`
	AppointmentID *int64          `json:"appointment_id"`
	Subject       string          `json:"subject"`
	Content       string          `json:"content"`
	Diagnosis     string          `json:"diagnosis"`
	Symptoms      string          `json:"symtoms"`
	Treatment     string          `json:"treatment"`
	Prescription  []Prescription  `json:"prescription"`
	CreatedAt     utils.Timestamp `json:"created_at"`
}

// Draft is a record as a doctor writes it. DoctorID is filled in from the
// session when the draft is added through Service.
type Draft struct {
	PatientID     int64          `json:"patient_id"`
	DoctorID      int64          `json:"doctor_id"`
	AppointmentID *int64         `json:"appointment_id,omitempty"`
	Subject       string         `json:"subject"`
	Content       string         `json:"content"`
	Diagnosis     string         `json:"diagnosis,omitempty"`
	Symptoms      string         `json:"symtoms,omitempty"`
	Treatment     string         `json:"treatment,omitempty"`
	Prescription  []Prescription `json:"prescription,omitempty"`
}

// Validate reports missing fields and bad prescription lines per field.
func (d Draft) Validate() error {
	var form gateway.FormErrors
	if d.PatientID <= 0 {
		form.Add("patient_id", "This field is required.")
	}
	if strings.TrimSpace(d.Subject) == "" {
		form.Add("subject", "This field is required.")
	}
	if strings.TrimSpace(d.Content) == "" {
		form.Add("content", "This field is required.")
	}
	for i, p := range d.Prescription {
		if strings.TrimSpace(p.Medication) == "" {
			form.Add(fmt.Sprintf("prescription.%d.medication", i), "This field is required.")
		}
		if p.Refills < 0 {
			form.Add(fmt.Sprintf("prescription.%d.refills", i), "Ensure this value is greater than or equal to 0.")
		}
	}
	if form.Empty() {
		return nil
	}
	return gateway.NewValidationError(form)
}
