package auth

import (
	"strings"

	"github.com/jrsteele09/go-hospital-client/gateway"
)

const requiredMsg = "This field is required."

// Validate checks required fields before anything is sent, reporting them in
// the same shape the backend uses.
func (p LoginParameters) Validate() error {
	var form gateway.FormErrors
	if strings.TrimSpace(p.Email) == "" {
		form.Add("email", requiredMsg)
	}
	if p.Password == "" {
		form.Add("password", requiredMsg)
	}
	return asValidation(form)
}

func (p RegisterParameters) Validate() error {
	var form gateway.FormErrors
	if strings.TrimSpace(p.Email) == "" {
		form.Add("email", requiredMsg)
	}
	if strings.TrimSpace(p.FullName) == "" {
		form.Add("full_name", requiredMsg)
	}
	if p.Password == "" {
		form.Add("password", requiredMsg)
	}
	return asValidation(form)
}

func asValidation(form gateway.FormErrors) error {
	if form.Empty() {
		return nil
	}
	return gateway.NewValidationError(form)
}
