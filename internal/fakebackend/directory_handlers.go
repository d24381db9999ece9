package fakebackend

import (
	"cmp"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/labstack/echo/v4"
)

func sortedValues[T any](m map[int64]*T) []*T {
	out := make([]*T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}

func derefAll[T any](list []*T) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		out = append(out, *v)
	}
	return out
}

func (b *Backend) listDoctors(c echo.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return c.JSON(http.StatusOK, derefAll(sortedValues(b.doctors)))
}

func (b *Backend) getDoctor(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.doctors[id]
	if !ok {
		return notFound(c, "Doctor")
	}
	return c.JSON(http.StatusOK, d)
}

func (b *Backend) doctorByUser(c echo.Context) error {
	userID, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, d := range b.doctors {
		if d.UserID == userID {
			return c.JSON(http.StatusOK, d)
		}
	}
	return notFound(c, "Doctor")
}

// doctorsBySpecialization answers a lone match as an object, like the
// backend does.
func (b *Backend) doctorsBySpecialization(c echo.Context) error {
	name := c.Param("name")
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []doctors.Doctor
	for _, d := range sortedValues(b.doctors) {
		if strings.EqualFold(d.Specialization, name) {
			out = append(out, *d)
		}
	}
	switch len(out) {
	case 0:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No doctors found for this specialization"})
	case 1:
		return c.JSON(http.StatusOK, out[0])
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) validateDoctor(in doctors.Input, id int64) map[string][]string {
	fields := map[string][]string{}
	required(fields, "user_id", in.UserID <= 0)
	required(fields, "full_name", in.FullName == "")
	required(fields, "specialization", in.Specialization == "")
	for _, d := range b.doctors {
		if d.ID != id && in.UserID > 0 && d.UserID == in.UserID {
			fields["user_id"] = append(fields["user_id"], "doctor with this user id already exists.")
		}
	}
	return fields
}

func (b *Backend) createDoctor(c echo.Context) error {
	var in doctors.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if fields := b.validateDoctor(in, 0); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}
	return c.JSON(http.StatusCreated, b.insertDoctor(doctorFrom(in)))
}

func (b *Backend) updateDoctor(c echo.Context) error {
	id, _ := pathID(c)
	var in doctors.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.doctors[id]
	if !ok {
		return notFound(c, "Doctor")
	}
	if fields := b.validateDoctor(in, id); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}
	updated := doctorFrom(in)
	updated.ID, updated.CreatedAt = d.ID, d.CreatedAt
	*d = updated
	return c.JSON(http.StatusOK, d)
}

func (b *Backend) deleteDoctor(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.doctors[id]; !ok {
		return notFound(c, "Doctor")
	}
	delete(b.doctors, id)
	return c.NoContent(http.StatusNoContent)
}

func doctorFrom(in doctors.Input) doctors.Doctor {
	return doctors.Doctor{
		UserID:            in.UserID,
		FullName:          in.FullName,
		Specialization:    in.Specialization,
		YearsOfExperience: in.YearsOfExperience,
		LicenseNumber:     in.LicenseNumber,
		PhoneNumber:       in.PhoneNumber,
	}
}

func (b *Backend) listPatients(c echo.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return c.JSON(http.StatusOK, derefAll(sortedValues(b.patients)))
}

// searchPatients matches q against name, email and phone, newest first.
func (b *Backend) searchPatients(c echo.Context) error {
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Provide query param q"})
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []patients.Patient{}
	for _, p := range sortedValues(b.patients) {
		if strings.Contains(strings.ToLower(p.FullName), q) ||
			strings.Contains(strings.ToLower(p.Email), q) ||
			strings.Contains(p.PhoneNumber, q) {
			out = append(out, *p)
		}
	}
	slices.SortStableFunc(out, func(x, y patients.Patient) int {
		return cmp.Compare(y.CreatedAt.UnixNano(), x.CreatedAt.UnixNano())
	})
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) getPatient(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.patients[id]
	if !ok {
		return notFound(c, "Patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (b *Backend) patientByUser(c echo.Context) error {
	userID, _ := pathID(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.patients {
		if p.UserID == userID {
			return c.JSON(http.StatusOK, p)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "Patient not found for this user"})
}

func (b *Backend) validatePatient(in patients.Input, id int64) map[string][]string {
	fields := map[string][]string{}
	required(fields, "user_id", in.UserID <= 0)
	required(fields, "date_of_birth", in.DateOfBirth == "")
	required(fields, "gender", in.Gender == "")
	for _, p := range b.patients {
		if p.ID != id && in.UserID > 0 && p.UserID == in.UserID {
			fields["user_id"] = append(fields["user_id"], "patient with this user id already exists.")
		}
	}
	return fields
}

func (b *Backend) createPatient(c echo.Context) error {
	var in patients.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if fields := b.validatePatient(in, 0); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}
	return c.JSON(http.StatusCreated, b.insertPatient(patientFrom(in)))
}

func (b *Backend) updatePatient(c echo.Context) error {
	id, _ := pathID(c)
	var in patients.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.patients[id]
	if !ok {
		return notFound(c, "Patient")
	}
	if fields := b.validatePatient(in, id); len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, fields)
	}
	updated := patientFrom(in)
	updated.ID, updated.CreatedAt = p.ID, p.CreatedAt
	if updated.FullName == "" {
		updated.FullName = p.FullName
	}
	if updated.Email == "" {
		updated.Email = p.Email
	}
	*p = updated
	return c.JSON(http.StatusOK, p)
}

func (b *Backend) deletePatient(c echo.Context) error {
	id, _ := pathID(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.patients[id]; !ok {
		return notFound(c, "Patient")
	}
	delete(b.patients, id)
	return c.NoContent(http.StatusNoContent)
}

func patientFrom(in patients.Input) patients.Patient {
	return patients.Patient{
		UserID:         in.UserID,
		FullName:       in.FullName,
		Email:          in.Email,
		DateOfBirth:    in.DateOfBirth,
		Gender:         in.Gender,
		PhoneNumber:    in.PhoneNumber,
		Address:        in.Address,
		BloodType:      in.BloodType,
		MedicalHistory: in.MedicalHistory,
	}
}
