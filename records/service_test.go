package records_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/internal/fakebackend"
	"github.com/jrsteele09/go-hospital-client/records"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/sessions/repofake"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	backend  *fakebackend.Backend
	sessions *sessions.Manager
	service  *records.Service

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
		sessions: mgr,
		service:  records.NewService(api, mgr),
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

func (f *testFixture) draft() records.Draft {
	return records.Draft{
		PatientID: f.patientID,
		Subject:   "Follow-up",
		Content:   "Blood pressure stable.",
		Symptoms:  "headache",
		Prescription: []records.Prescription{
			{Medication: "Ibuprofen", Dosage: "200mg", Frequency: "twice daily", Refills: 1},
		},
	}
}

func TestAdd_DoctorAuthorsRecord(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.doctor)

	rec, err := f.service.Add(context.Background(), f.draft())
	require.NoError(t, err)
	require.Equal(t, f.doctorID, rec.DoctorID)
	require.Equal(t, f.patientID, rec.PatientID)
	require.Equal(t, "headache", rec.Symptoms)
	require.Len(t, rec.Prescription, 1)

	reqs := f.backend.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, http.MethodGet, reqs[0].Method)
	require.Equal(t, http.MethodPost, reqs[1].Method)
	require.Equal(t, "/api/medical-records/", reqs[1].Path)

	stored := f.backend.Records()
	require.Len(t, stored, 1)
	require.Equal(t, "headache", stored[0].Symptoms)
}

func TestAdd_OnlyDoctors(t *testing.T) {
	for _, u := range []func(*testFixture) users.User{
		func(f *testFixture) users.User { return f.patient },
		func(f *testFixture) users.User { return f.admin },
	} {
		f := setupTestFixture(t)
		f.loginAs(t, u(f))
		_, err := f.service.Add(context.Background(), f.draft())
		require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
		require.Empty(t, f.backend.Requests())
	}
}

func TestAdd_NoSession(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.Add(context.Background(), f.draft())
	require.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestAdd_InvalidDraftNeverSent(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.doctor)

	d := f.draft()
	d.Subject = " "
	d.Prescription = append(d.Prescription, records.Prescription{Refills: -1})
	_, err := f.service.Add(context.Background(), d)

	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	require.Equal(t, []string{"prescription.1.medication", "prescription.1.refills", "subject"}, gwErr.Form.FieldNames())
	require.Empty(t, f.backend.Requests())
}

func TestAdd_DoctorRecordMissing(t *testing.T) {
	f := setupTestFixture(t)
	orphan := f.backend.AddUserOnly("orphan@example.com", "Orphan", "pw", users.RoleDoctor)
	f.loginAs(t, orphan)

	_, err := f.service.Add(context.Background(), f.draft())
	require.ErrorIs(t, err, apperrors.ErrDoctorNotFound)
	require.Empty(t, f.backend.Records())
}

func TestAdd_UnknownPatient(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAs(t, f.doctor)

	d := f.draft()
	d.PatientID = 9999
	_, err := f.service.Add(context.Background(), d)

	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	require.Equal(t, gateway.KindValidation, gwErr.Kind)
	require.Equal(t, "Invalid patient", gwErr.Notice())
}

func TestReads(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	t.Run("patient with no records gets an empty list", func(t *testing.T) {
		f.loginAs(t, f.patient)
		list, err := f.service.Mine(ctx)
		require.NoError(t, err)
		require.NotNil(t, list)
		require.Empty(t, list)
	})

	f.loginAs(t, f.doctor)
	_, err := f.service.Add(ctx, f.draft())
	require.NoError(t, err)

	t.Run("patient sees own records", func(t *testing.T) {
		f.loginAs(t, f.patient)
		list, err := f.service.Mine(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("patients cannot browse other patients", func(t *testing.T) {
		f.loginAs(t, f.patient)
		_, err := f.service.ForPatient(ctx, f.patientID)
		require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
	})

	t.Run("doctor and admin read by patient", func(t *testing.T) {
		for _, u := range []users.User{f.doctor, f.admin} {
			f.loginAs(t, u)
			list, err := f.service.ForPatient(ctx, f.patientID)
			require.NoError(t, err)
			require.Len(t, list, 1)
		}
	})

	t.Run("mine is patient only", func(t *testing.T) {
		f.loginAs(t, f.doctor)
		_, err := f.service.Mine(ctx)
		require.ErrorIs(t, err, apperrors.ErrForbiddenRole)
	})
}

func TestDraft_Validate(t *testing.T) {
	gwErr, ok := gateway.AsError(records.Draft{}.Validate())
	require.True(t, ok)
	require.Equal(t, []string{"content", "patient_id", "subject"}, gwErr.Form.FieldNames())

	require.NoError(t, records.Draft{PatientID: 1, Subject: "s", Content: "c"}.Validate())
}
