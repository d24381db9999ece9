package gateway_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jrsteele09/go-hospital-client/gateway"
	"github.com/stretchr/testify/require"
)

func TestParseFormErrors(t *testing.T) {
	t.Run("single field error", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte(`{"full_name": ["This field is required."]}`))
		require.Equal(t, []string{"full_name"}, f.FieldNames())
		require.Equal(t, []string{"This field is required."}, f.Field("full_name"))
		require.Empty(t, f.Global)
		require.Empty(t, f.Message())
	})

	t.Run("non field errors are global", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte(`{"non_field_errors": ["Invalid credentials"], "email": ["Enter a valid email address."]}`))
		require.Equal(t, []string{"Invalid credentials"}, f.Global)
		require.Equal(t, []string{"Enter a valid email address."}, f.Field("email"))
		require.Nil(t, f.Field("non_field_errors"))
	})

	t.Run("detail string", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte(`{"detail": "Authentication credentials were not provided."}`))
		require.False(t, f.HasFieldErrors())
		require.Equal(t, "Authentication credentials were not provided.", f.Message())
	})

	t.Run("error with details", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte(`{"error": "Failed to create user", "details": "db down"}`))
		require.Equal(t, []string{"db down", "Failed to create user"}, f.Global)
	})

	t.Run("bare list", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte(`["first", "second"]`))
		require.Equal(t, []string{"first", "second"}, f.Global)
	})

	t.Run("nested field objects", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte(`{"prescription": [{"refills": ["Ensure this value is greater than or equal to 0."]}]}`))
		require.Equal(t, []string{"refills: Ensure this value is greater than or equal to 0."}, f.Field("prescription"))
	})

	t.Run("plain text body", func(t *testing.T) {
		f := gateway.ParseFormErrors([]byte("Bad Gateway\n"))
		require.Equal(t, []string{"Bad Gateway"}, f.Global)
	})

	t.Run("long plain text keeps whole runes", func(t *testing.T) {
		body := "x" + strings.Repeat("é", 300)
		f := gateway.ParseFormErrors([]byte(body))
		require.Len(t, f.Global, 1)
		msg := f.Global[0]
		require.True(t, utf8.ValidString(msg))
		require.True(t, strings.HasSuffix(msg, "é…"))
		require.Equal(t, 201, utf8.RuneCountInString(msg))
	})

	t.Run("empty body", func(t *testing.T) {
		require.True(t, gateway.ParseFormErrors(nil).Empty())
	})
}

func TestFormErrors_Add(t *testing.T) {
	var f gateway.FormErrors
	f.Add("reason", "too long")
	f.Add("reason", "contains markup")
	f.AddGlobal("check the form")

	require.Len(t, f.Field("reason"), 2)
	require.Equal(t, "check the form", f.Message())
	require.Equal(t, "check the form; reason: too long; reason: contains markup", f.String())
}
