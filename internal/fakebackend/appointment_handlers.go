package fakebackend

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-hospital-client/appointments"
	"github.com/jrsteele09/go-hospital-client/records"
	"github.com/labstack/echo/v4"
)

func (b *Backend) listAppointments(c echo.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return c.JSON(http.StatusOK, derefAll(sortedValues(b.appointments)))
}

func (b *Backend) getAppointment(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.appointments[id]
	if !ok {
		return notFound(c, "Appointment")
	}
	return c.JSON(http.StatusOK, a)
}

func (b *Backend) appointmentsBy(c echo.Context, match func(*appointments.Appointment, int64) bool) error {
	id, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []appointments.Appointment{}
	for _, a := range sortedValues(b.appointments) {
		if match(a, id) {
			out = append(out, *a)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) appointmentsByPatient(c echo.Context) error {
	return b.appointmentsBy(c, func(a *appointments.Appointment, id int64) bool { return a.PatientID == id })
}

func (b *Backend) appointmentsByDoctor(c echo.Context) error {
	return b.appointmentsBy(c, func(a *appointments.Appointment, id int64) bool { return a.DoctorID == id })
}

func (b *Backend) createAppointment(c echo.Context) error {
	var in appointments.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.patients[in.PatientID]; !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid patient"})
	}
	if _, ok := b.doctors[in.DoctorID]; !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid doctor"})
	}
	fields := map[string][]string{}
	required(fields, "appointment_date", in.Date == "")
	required(fields, "appointment_time", in.Time == "")
	if in.Date != "" {
		if _, err := time.Parse(time.DateOnly, in.Date); err != nil {
			fields["appointment_date"] = append(fields["appointment_date"], "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		}
	}
	if in.Time != "" {
		if _, err := time.Parse(time.TimeOnly, in.Time); err != nil {
			fields["appointment_time"] = append(fields["appointment_time"], "Time has wrong format. Use one of these formats instead: hh:mm[:ss[.uuuuuu]].")
		}
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}

	a := b.insertAppointment(appointments.Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		Time:      in.Time,
		Status:    in.Status,
		Reason:    in.Reason,
	})
	return c.JSON(http.StatusCreated, a)
}

type appointmentPatch struct {
	Status *string `json:"status"`
	Reason *string `json:"reason"`
	Date   *string `json:"appointment_date"`
	Time   *string `json:"appointment_time"`
}

// patchAppointment stores whatever status it is given. The backend does not
// enforce the workflow.
func (b *Backend) patchAppointment(c echo.Context) error {
	id, _ := pathID(c)
	var in appointmentPatch
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.appointments[id]
	if !ok {
		return notFound(c, "Appointment")
	}
	if in.Status != nil {
		if *in.Status == "" {
			return c.JSON(http.StatusBadRequest, map[string][]string{"status": {"This field may not be blank."}})
		}
		a.Status = appointments.Status(*in.Status)
	}
	if in.Reason != nil {
		a.Reason = *in.Reason
	}
	if in.Date != nil {
		a.Date = *in.Date
	}
	if in.Time != nil {
		a.Time = *in.Time
	}
	return c.JSON(http.StatusOK, a)
}

func (b *Backend) listRecords(c echo.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return c.JSON(http.StatusOK, derefAll(sortedValues(b.records)))
}

func (b *Backend) getRecord(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.records[id]
	if !ok {
		return notFound(c, "Medical record")
	}
	return c.JSON(http.StatusOK, r)
}

func (b *Backend) createRecord(c echo.Context) error {
	var in records.Draft
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.patients[in.PatientID]; !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid patient"})
	}
	if _, ok := b.doctors[in.DoctorID]; !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid doctor"})
	}
	if in.AppointmentID != nil {
		if _, ok := b.appointments[*in.AppointmentID]; !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid appointment"})
		}
	}
	fields := map[string][]string{}
	required(fields, "subject", in.Subject == "")
	required(fields, "content", in.Content == "")
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}

	r := &records.MedicalRecord{
		ID:            b.id(),
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		AppointmentID: in.AppointmentID,
		Subject:       in.Subject,
		Content:       in.Content,
		Diagnosis:     in.Diagnosis,
		Symptoms:      in.Symptoms,
		Treatment:     in.Treatment,
		Prescription:  in.Prescription,
		CreatedAt:     b.stamp(),
	}
	b.records[r.ID] = r
	return c.JSON(http.StatusCreated, r)
}

func (b *Backend) recordsBy(c echo.Context, what string, match func(*records.MedicalRecord, int64) bool) error {
	id, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []records.MedicalRecord{}
	for _, r := range sortedValues(b.records) {
		if match(r, id) {
			out = append(out, *r)
		}
	}
	if len(out) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No medical records found for " + what + " ID: " + c.Param("id")})
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) recordsByPatient(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.RLock()
	_, ok := b.patients[id]
	b.mu.RUnlock()
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid patient"})
	}
	return b.recordsBy(c, "patient", func(r *records.MedicalRecord, id int64) bool { return r.PatientID == id })
}

func (b *Backend) recordsByDoctor(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.RLock()
	_, ok := b.doctors[id]
	b.mu.RUnlock()
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid doctor"})
	}
	return b.recordsBy(c, "doctor", func(r *records.MedicalRecord, id int64) bool { return r.DoctorID == id })
}
