package main

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-hospital-client/chatbot"
	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
)

// present turns err into what the user sees: field messages one per line,
// then a single notice.
func present(w io.Writer, err error) {
	if err == nil {
		return
	}
	if gwErr, ok := gateway.AsError(err); ok {
		for _, name := range gwErr.Form.FieldNames() {
			for _, msg := range gwErr.Form.Field(name) {
				fmt.Fprintf(w, "  %s: %s\n", name, msg)
			}
		}
		if notice := gwErr.Notice(); notice != "" {
			fmt.Fprintln(w, notice)
		}
		return
	}
	fmt.Fprintln(w, notice(err))
}

func notice(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrNoSession):
		return "You are not logged in. Run `hms login` first."
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		return "That login has already expired. Please log in again."
	case apperrors.Is(err, apperrors.ErrForbiddenRole):
		return "This is not available for your role."
	case apperrors.Is(err, apperrors.ErrActionNotAllowed):
		return "That action is not allowed for the appointment's current status."
	case apperrors.Is(err, apperrors.ErrRequestInFlight):
		return "That request is already in progress."
	case apperrors.Is(err, apperrors.ErrPatientNotFound):
		return "No patient record is linked to your account."
	case apperrors.Is(err, apperrors.ErrDoctorNotFound):
		return "No doctor record is linked to your account."
	case apperrors.Is(err, chatbot.ErrNotStarted):
		return "Please start the conversation first."
	}
	return err.Error()
}
