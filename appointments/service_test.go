package appointments_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-hospital-client/appointments"
	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/internal/fakebackend"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/sessions/repofake"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	backend  *fakebackend.Backend
	url      string
	sessions *sessions.Manager
	service  *appointments.Service

	patient users.User
	doctor  users.User
	admin   users.User

	patientID int64
	doctorID  int64
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend, srv := fakebackend.NewServer()
	t.Cleanup(srv.Close)

	mgr := sessions.NewManager(repofake.NewFakeSessionRepo(), sessions.WithLogger(zerolog.Nop()))
	t.Cleanup(mgr.Close)

	api, err := gateway.New(srv.URL, gateway.WithTokenSource(mgr), gateway.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	f := &testFixture{
		backend:  backend,
		url:      srv.URL,
		sessions: mgr,
		service:  appointments.NewService(api, mgr, appointments.WithLogger(zerolog.Nop())),
		patient:  backend.AddUser("pat@example.com", "Pat Patient", "pw", users.RolePatient),
		doctor:   backend.AddUser("doc@example.com", "Doc Doctor", "pw", users.RoleDoctor),
		admin:    backend.AddUser("admin@example.com", "Ada Admin", "pw", users.RoleAdmin),
	}
	p, ok := backend.PatientForUser(f.patient.ID)
	require.True(t, ok)
	f.patientID = p.ID
	d, ok := backend.DoctorForUser(f.doctor.ID)
	require.True(t, ok)
	f.doctorID = d.ID
	return f
}

func (f *testFixture) loginAs(t *testing.T, u users.User) {
	t.Helper()
	require.NoError(t, f.sessions.Login(u, f.backend.IssueToken(u.ID, time.Hour)))
	f.backend.ResetRequests()
}

func (f *testFixture) seed(status appointments.Status) appointments.Appointment {
	return f.backend.AddAppointment(appointments.Appointment{
		PatientID: f.patientID,
		DoctorID:  f.doctorID,
		Date:      "2025-03-10",
		Time:      "09:00:00",
		Status:    status,
		Reason:    "checkup",
	})
}

func formOf(t *testing.T, err error) gateway.FormErrors {
	t.Helper()
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok, "expected gateway error, got %v", err)
	require.Equal(t, gateway.KindValidation, gwErr.Kind)
	return gwErr.Form
}

func TestBook_CreatesPendingAppointment(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.patient)

	appt, err := f.service.Book(context.Background(), appointments.BookingRequest{
		DoctorID: f.doctorID,
		Date:     "2025-03-10",
		Time:     "09:00:00",
		Reason:   "checkup",
	})
	require.NoError(t, err)
	require.Equal(t, appointments.StatusPending, appt.Status)
	require.Equal(t, f.patientID, appt.PatientID)
	require.Equal(t, f.doctorID, appt.DoctorID)
	require.Equal(t, "2025-03-10", appt.Date)
	require.Equal(t, "09:00:00", appt.Time)
	require.Equal(t, "checkup", appt.Reason)

	// patient record resolved strictly before the create
	reqs := f.backend.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, fmt.Sprintf("/api/patient/user/%d/", f.patient.ID), reqs[0].Path)
	require.Equal(t, http.MethodPost, reqs[1].Method)
	require.Equal(t, "/api/appointment/", reqs[1].Path)
	require.NotEmpty(t, reqs[1].Authorization)
}

func TestBook_OnlyPatients(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.doctor)

	_, err := f.service.Book(context.Background(), appointments.BookingRequest{DoctorID: f.doctorID, Date: "2025-03-10", Time: "09:00"})
	require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
	require.Empty(t, f.backend.Requests())
}

func TestBook_WithoutSession(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.Book(context.Background(), appointments.BookingRequest{DoctorID: 1, Date: "2025-03-10", Time: "09:00"})
	require.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestBook_InvalidInputNeverSent(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.patient)

	_, err := f.service.Book(context.Background(), appointments.BookingRequest{DoctorID: f.doctorID, Date: "", Time: "09:00"})
	require.Equal(t, []string{"This field is required."}, formOf(t, err).Field("appointment_date"))
	require.Empty(t, f.backend.Requests())
}

func TestBook_PatientRecordMissing(t *testing.T) {
	f := setupTestFixture(t)
	orphan := f.backend.AddUserOnly("orphan@example.com", "No Record", "pw", users.RolePatient)
	f.loginAs(t, orphan)

	_, err := f.service.Book(context.Background(), appointments.BookingRequest{DoctorID: f.doctorID, Date: "2025-03-10", Time: "09:00"})
	require.ErrorIs(t, err, apperrors.ErrPatientNotFound)
	require.Zero(t, f.backend.CountRequests(http.MethodPost, "/api/appointment/"))
}

func TestBook_ServerRejectsDoctor(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.patient)

	_, err := f.service.Book(context.Background(), appointments.BookingRequest{DoctorID: 999, Date: "2025-03-10", Time: "09:00"})
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	require.Equal(t, gateway.KindValidation, gwErr.Kind)
	require.Equal(t, "Invalid doctor", gwErr.Notice())
}

func TestAct_DoctorWorkflow(t *testing.T) {
	f := setupTestFixture(t)
	appt := f.seed(appointments.StatusPending)
	f.loginAs(t, f.doctor)

	updated, err := f.service.Act(context.Background(), appt.ID, appointments.ActionConfirm)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusConfirmed, updated.Status)

	updated, err = f.service.Act(context.Background(), appt.ID, appointments.ActionComplete)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusCompleted, updated.Status)

	// terminal: the read happens, the patch does not
	f.backend.ResetRequests()
	_, err = f.service.Act(context.Background(), appt.ID, appointments.ActionCancel)
	require.ErrorIs(t, err, apperrors.ErrActionNotAllowed)
	require.Zero(t, f.backend.CountRequests(http.MethodPatch, fmt.Sprintf("/api/appointment/%d/", appt.ID)))

	stored, _ := f.backend.Appointment(appt.ID)
	require.Equal(t, appointments.StatusCompleted, stored.Status)
}

func TestAct_PatientCancelsPendingOnly(t *testing.T) {
	f := setupTestFixture(t)
	pending := f.seed(appointments.StatusPending)
	confirmed := f.seed(appointments.StatusConfirmed)
	f.loginAs(t, f.patient)

	updated, err := f.service.Act(context.Background(), pending.ID, appointments.ActionCancel)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusCancelled, updated.Status)

	_, err = f.service.Act(context.Background(), confirmed.ID, appointments.ActionCancel)
	require.ErrorIs(t, err, apperrors.ErrActionNotAllowed)
	stored, _ := f.backend.Appointment(confirmed.ID)
	require.Equal(t, appointments.StatusConfirmed, stored.Status)
}

func TestAct_OutOfTableMakesNoRequest(t *testing.T) {
	f := setupTestFixture(t)
	appt := f.seed(appointments.StatusPending)
	f.loginAs(t, f.patient)

	_, err := f.service.Act(context.Background(), appt.ID, appointments.ActionComplete)
	require.ErrorIs(t, err, apperrors.ErrActionNotAllowed)

	_, err = f.service.ActOn(context.Background(), appt, appointments.ActionConfirm)
	require.ErrorIs(t, err, apperrors.ErrActionNotAllowed)

	require.Empty(t, f.backend.Requests())
}

func TestActOn_UsesKnownStatus(t *testing.T) {
	f := setupTestFixture(t)
	appt := f.seed(appointments.StatusPending)
	f.loginAs(t, f.doctor)

	updated, err := f.service.ActOn(context.Background(), appt, appointments.ActionCancel)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusCancelled, updated.Status)

	reqs := f.backend.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodPatch, reqs[0].Method)
}

func TestSetStatus_AdminOverride(t *testing.T) {
	f := setupTestFixture(t)
	appt := f.seed(appointments.StatusCompleted)

	f.loginAs(t, f.doctor)
	_, err := f.service.SetStatus(context.Background(), appt.ID, appointments.StatusPending)
	require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
	require.Empty(t, f.backend.Requests())

	f.loginAs(t, f.admin)
	updated, err := f.service.SetStatus(context.Background(), appt.ID, appointments.StatusPending)
	require.NoError(t, err)
	require.Equal(t, appointments.StatusPending, updated.Status)

	_, err = f.service.SetStatus(context.Background(), appt.ID, appointments.Status("archived"))
	require.Len(t, formOf(t, err).Field("status"), 1)
}

func TestForCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	mine := f.seed(appointments.StatusPending)
	other := f.backend.AddPatient(patients.Patient{UserID: 999, FullName: "Other Patient"})
	f.backend.AddAppointment(appointments.Appointment{PatientID: other.ID, DoctorID: f.doctorID, Date: "2025-03-11", Time: "10:00:00"})

	t.Run("patient sees own", func(t *testing.T) {
		f.loginAs(t, f.patient)
		list, err := f.service.ForCurrentUser(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, mine.ID, list[0].ID)

		reqs := f.backend.Requests()
		require.Len(t, reqs, 2)
		require.Equal(t, fmt.Sprintf("/api/patient/user/%d/", f.patient.ID), reqs[0].Path)
		require.Equal(t, fmt.Sprintf("/api/appointment/patient/%d/", f.patientID), reqs[1].Path)
	})

	t.Run("doctor sees queue", func(t *testing.T) {
		f.loginAs(t, f.doctor)
		list, err := f.service.ForCurrentUser(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, fmt.Sprintf("/api/doctor/user/%d/", f.doctor.ID), f.backend.Requests()[0].Path)
	})

	t.Run("admin sees all", func(t *testing.T) {
		f.loginAs(t, f.admin)
		list, err := f.service.ForCurrentUser(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 2)
	})

	t.Run("doctor without record", func(t *testing.T) {
		orphan := f.backend.AddUserOnly("new-doc@example.com", "New Doc", "pw", users.RoleDoctor)
		f.loginAs(t, orphan)
		_, err := f.service.ForCurrentUser(context.Background())
		require.ErrorIs(t, err, apperrors.ErrDoctorNotFound)
	})
}

func TestService_OneRequestInFlightPerAppointment(t *testing.T) {
	f := setupTestFixture(t)
	appt := f.seed(appointments.StatusPending)
	f.loginAs(t, f.doctor)

	// hold the PATCH open so a second submit overlaps it
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	slow := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method == http.MethodPatch {
			once.Do(func() { close(entered) })
			<-release
		}
		return http.DefaultTransport.RoundTrip(r)
	})}

	api, err := gateway.New(f.url, gateway.WithTokenSource(f.sessions), gateway.WithHTTPClient(slow), gateway.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	svc := appointments.NewService(api, f.sessions, appointments.WithLogger(zerolog.Nop()))

	errs := make(chan error, 1)
	go func() {
		_, err := svc.ActOn(context.Background(), appt, appointments.ActionConfirm)
		errs <- err
	}()
	<-entered

	_, err = svc.ActOn(context.Background(), appt, appointments.ActionCancel)
	require.ErrorIs(t, err, apperrors.ErrRequestInFlight)

	close(release)
	require.NoError(t, <-errs)

	// released once the first request finished
	_, err = svc.ActOn(context.Background(), appointments.Appointment{ID: appt.ID, Status: appointments.StatusConfirmed}, appointments.ActionComplete)
	require.NoError(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
