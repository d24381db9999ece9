package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call. Callers branch on Kind, never on status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindUnauthorized
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Method     string
	Path       string
	Form       FormErrors
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[gateway]")
	if e.Method != "" {
		fmt.Fprintf(&b, " %s %s:", e.Method, e.Path)
	}
	fmt.Fprintf(&b, " %s", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (%d)", e.StatusCode)
	}
	if detail := e.Form.String(); detail != "" {
		fmt.Fprintf(&b, ": %s", detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Notice is the single user-facing message for the error. For validation
// failures it only carries the global (non-field) messages and is empty when
// every message belongs to a named field.
func (e *Error) Notice() string {
	if e.Kind == KindValidation {
		return e.Form.Message()
	}
	if msg := e.Form.Message(); msg != "" {
		return msg
	}
	switch e.Kind {
	case KindNetwork:
		return "Cannot reach the server. Please try again."
	case KindUnauthorized:
		return "You are not authorized. Please log in again."
	case KindNotFound:
		return "The requested record was not found."
	default:
		if e.StatusCode != 0 {
			return fmt.Sprintf("Request failed: %s", http.StatusText(e.StatusCode))
		}
		return "Something went wrong. Please try again."
	}
}

// NewValidationError builds a validation failure from local checks so that
// callers route it exactly like a server-reported one.
func NewValidationError(form FormErrors) *Error {
	return &Error{Kind: KindValidation, Form: form}
}

// AsError unwraps err to a gateway *Error.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// KindOf reports the Kind of err; errors from outside the gateway are unknown.
func KindOf(err error) Kind {
	if ge, ok := AsError(err); ok {
		return ge.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool     { return err != nil && KindOf(err) == KindNotFound }
func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == KindUnauthorized }
func IsValidation(err error) bool   { return err != nil && KindOf(err) == KindValidation }
func IsNetwork(err error) bool      { return err != nil && KindOf(err) == KindNetwork }

func classify(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, StatusCode: status, Form: ParseFormErrors(body)}
	switch {
	case status == http.StatusBadRequest:
		e.Kind = KindValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	default:
		e.Kind = KindUnknown
	}
	// only validation errors are routed to form fields
	if e.Kind != KindValidation && e.Form.HasFieldErrors() {
		e.Form = FormErrors{Global: append(e.Form.Global, e.Form.flatFields()...)}
	}
	return e
}
