package patients_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-hospital-client/gateway"
	"github.com/jrsteele09/go-hospital-client/internal/fakebackend"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type testFixture struct {
	backend *fakebackend.Backend
	client  *patients.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	backend, srv := fakebackend.NewServer()
	t.Cleanup(srv.Close)

	doctor := backend.AddUser("house@example.com", "Dr. House", "pw", users.RoleDoctor)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: backend.IssueToken(doctor.ID, time.Hour)})
	api, err := gateway.New(srv.URL, gateway.WithTokenSource(ts), gateway.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return &testFixture{backend: backend, client: patients.NewClient(api)}
}

func validInput(userID int64) patients.Input {
	return patients.Input{
		UserID:      userID,
		FullName:    "Jane Roe",
		DateOfBirth: "1990-04-01",
		Gender:      "Female",
		PhoneNumber: "555-0101",
		Address:     "1 Main St",
	}
}

func TestClient_CRUD(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	created, err := f.client.Create(ctx, validInput(77))
	require.NoError(t, err)
	require.Equal(t, "Jane Roe", created.FullName)
	require.Nil(t, created.BloodType)

	byUser, err := f.client.ByUser(ctx, 77)
	require.NoError(t, err)
	require.Equal(t, created.ID, byUser.ID)

	in := validInput(77)
	bloodType := "O+"
	in.BloodType = &bloodType
	updated, err := f.client.Update(ctx, created.ID, in)
	require.NoError(t, err)
	require.NotNil(t, updated.BloodType)
	require.Equal(t, "O+", *updated.BloodType)

	require.NoError(t, f.client.Delete(ctx, created.ID))
	_, err = f.client.Get(ctx, created.ID)
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	require.Equal(t, gateway.KindNotFound, gwErr.Kind)
	require.Equal(t, "Patient not found", gwErr.Notice())
}

func TestClient_ByUserMissing(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.client.ByUser(context.Background(), 999)
	require.True(t, gateway.IsNotFound(err))
}

func TestClient_Search(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.backend.AddPatient(patients.Patient{UserID: 10, FullName: "Ann Smith", CreatedAt: utils.Timestamp{Time: base}})
	f.backend.AddPatient(patients.Patient{UserID: 11, FullName: "Bob Smithers", CreatedAt: utils.Timestamp{Time: base.Add(time.Hour)}})
	f.backend.AddPatient(patients.Patient{UserID: 12, FullName: "Carl Jones", Email: "carl@example.com", CreatedAt: utils.Timestamp{Time: base}})

	t.Run("query goes to the search endpoint", func(t *testing.T) {
		f.backend.ResetRequests()
		list, err := f.client.Search(ctx, "  smith ")
		require.NoError(t, err)
		require.Equal(t, []string{"Bob Smithers", "Ann Smith"}, fullNames(list))
		require.Equal(t, 1, f.backend.CountRequests(http.MethodGet, "/api/patient/search/"))
		require.Equal(t, "q=smith", f.backend.Requests()[0].Query)
	})

	t.Run("blank query lists everyone", func(t *testing.T) {
		f.backend.ResetRequests()
		list, err := f.client.Search(ctx, "   ")
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, 1, f.backend.CountRequests(http.MethodGet, "/api/patient/"))
	})
}

func TestInput_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validInput(1).Validate())
	})

	t.Run("missing fields", func(t *testing.T) {
		gwErr, ok := gateway.AsError(patients.Input{}.Validate())
		require.True(t, ok)
		require.Equal(t, []string{"address", "date_of_birth", "gender", "phone_number", "user_id"}, gwErr.Form.FieldNames())
	})

	t.Run("date format", func(t *testing.T) {
		in := validInput(1)
		in.DateOfBirth = "01/04/1990"
		gwErr, ok := gateway.AsError(in.Validate())
		require.True(t, ok)
		require.Equal(t, []string{"Date has wrong format. Use YYYY-MM-DD."}, gwErr.Form.Field("date_of_birth"))
	})
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []patients.Patient{
		{ID: 1, CreatedAt: utils.Timestamp{Time: base}},
		{ID: 2, CreatedAt: utils.Timestamp{Time: base.Add(2 * time.Hour)}},
		{ID: 3, CreatedAt: utils.Timestamp{Time: base}},
		{ID: 4, CreatedAt: utils.Timestamp{Time: base.Add(time.Hour)}},
	}
	patients.SortNewestFirst(list)

	ids := make([]int64, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []int64{2, 4, 1, 3}, ids)
}

func fullNames(list []patients.Patient) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.FullName)
	}
	return out
}
