package appointments

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/users"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Terminal reports whether no action can leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

var Actions = []Action{ActionConfirm, ActionComplete, ActionCancel}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Actions, a) {
		return "", fmt.Errorf("unknown appointment action %q", s)
	}
	return a, nil
}

// Target is the status an action moves an appointment to.
func (a Action) Target() Status {
	switch a {
	case ActionConfirm:
		return StatusConfirmed
	case ActionComplete:
		return StatusCompleted
	case ActionCancel:
		return StatusCancelled
	}
	return ""
}

func (a Action) String() string {
	return string(a)
}

// AllowedActions returns the actions role may take on an appointment in
// status, in the order confirm, complete, cancel. Admins get none here; they
// change status through the override instead.
//
//	pending   -> confirmed  doctor
//	pending   -> cancelled  patient, doctor
//	confirmed -> completed  doctor
//	confirmed -> cancelled  doctor
func AllowedActions(status Status, role users.RoleType) []Action {
	switch role {
	case users.RolePatient:
		if status == StatusPending {
			return []Action{ActionCancel}
		}
	case users.RoleDoctor:
		switch status {
		case StatusPending:
			return []Action{ActionConfirm, ActionCancel}
		case StatusConfirmed:
			return []Action{ActionComplete, ActionCancel}
		}
	case users.RoleAdmin:
	}
	return nil
}

// Authorize returns the status action leads to, or ErrActionNotAllowed when
// the table does not permit it.
func Authorize(status Status, role users.RoleType, action Action) (Status, error) {
	if !slices.Contains(AllowedActions(status, role), action) {
		return "", fmt.Errorf("[appointments Authorize] %s on %s appointment as %s: %w",
			action, status, role, apperrors.ErrActionNotAllowed)
	}
	return action.Target(), nil
}

// MayEver reports whether role can take action from at least one status.
// Requests that fail this check are refused before the appointment is read.
func MayEver(role users.RoleType, action Action) bool {
	for _, s := range Statuses {
		if slices.Contains(AllowedActions(s, role), action) {
			return true
		}
	}
	return false
}

// CanBook reports whether role may create appointments.
func CanBook(role users.RoleType) bool {
	return role == users.RolePatient
}

// CanOverride reports whether role may set any status directly.
func CanOverride(role users.RoleType) bool {
	return role == users.RoleAdmin
}
