package users

import (
	"fmt"
	"strings"
)

// RoleType is the closed set of roles the backend assigns. Code that behaves
// differently per role switches over all three values.
type RoleType string

const (
	RolePatient RoleType = "patient" // books and cancels own appointments, uses the chatbot
	RoleDoctor  RoleType = "doctor"  // works the appointment queue, authors medical records
	RoleAdmin   RoleType = "admin"   // manages users, doctors, patients and appointments
)

// Roles lists every role in display order.
var Roles = []RoleType{RolePatient, RoleDoctor, RoleAdmin}

func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r RoleType) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

func (r RoleType) String() string {
	return string(r)
}

type User struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     RoleType `json:"role"`
}

// Valid reports whether u can back a session.
func (u *User) Valid() bool {
	return u != nil && u.ID > 0 && u.Role.Valid()
}

// DisplayName prefers the full name and falls back to the email.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}

func (u *User) IsPatient() bool { return u.Role == RolePatient }
func (u *User) IsDoctor() bool  { return u.Role == RoleDoctor }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

// UserInput is the payload for admin create and update. Password is only sent
// when set.
type UserInput struct {
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     RoleType `json:"role,omitempty"`
	Password string   `json:"password,omitempty"`
}
