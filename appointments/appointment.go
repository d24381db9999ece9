// Package appointments holds the appointment workflow: the gate deciding
// which status changes each role may make, the API client, and the service
// that checks the gate before anything is sent.
package appointments

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-hospital-client/gateway"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
)

const (
	DateLayout = time.DateOnly
	TimeLayout = time.TimeOnly
)

type Appointment struct {
	ID        int64           `json:"id"`
	PatientID int64           `json:"patient_id"`
	DoctorID  int64           `json:"doctor_id"`
	Date      string          `json:"appointment_date"`
	Time      string          `json:"appointment_time"`
	Status    Status          `json:"status"`
	Reason    string          `json:"reason"`
	CreatedAt utils.Timestamp `json:"created_at"`
}

// CreateInput is the POST /api/appointment/ payload.
type CreateInput struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"appointment_date"`
	Time      string `json:"appointment_time"`
	Status    Status `json:"status"`
	Reason    string `json:"reason"`
}

type statusPatch struct {
	Status Status `json:"status"`
}

// BookingRequest is what a patient fills in. The patient is the session
// user and the status is always pending.
type BookingRequest struct {
	DoctorID int64
	Date     string
	Time     string
	Reason   string
}

// Normalize validates the request and returns it with the time in HH:MM:SS.
func (r BookingRequest) Normalize() (BookingRequest, error) {
	var form gateway.FormErrors
	if r.DoctorID <= 0 {
		form.Add("doctor_id", "This field is required.")
	}

	r.Date = strings.TrimSpace(r.Date)
	if r.Date == "" {
		form.Add("appointment_date", "This field is required.")
	} else if _, err := time.Parse(DateLayout, r.Date); err != nil {
		form.Add("appointment_date", "Date has wrong format. Use YYYY-MM-DD.")
	}

	r.Time = strings.TrimSpace(r.Time)
	if r.Time == "" {
		form.Add("appointment_time", "This field is required.")
	} else if t, err := parseClock(r.Time); err != nil {
		form.Add("appointment_time", "Time has wrong format. Use hh:mm:ss.")
	} else {
		r.Time = t
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if !form.Empty() {
		return r, gateway.NewValidationError(form)
	}
	return r, nil
}

func parseClock(s string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognised time %q", s)
}
