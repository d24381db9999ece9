// Package patients is the patient registry used by doctors and admins, and
// the lookup that maps a user account to its patient record.
package patients

import (
	"sort"

	"github.com/jrsteele09/go-hospital-client/internal/utils"
)

type Patient struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	DateOfBirth    string          `json:"date_of_birth"`
	Gender         string          `json:"gender"`
	PhoneNumber    string          `json:"phone_number"`
	Address        string          `json:"address"`
	BloodType      *string         `json:"blood_type"`
	MedicalHistory string          `json:"medical_history"`
	CreatedAt      utils.Timestamp `json:"created_at"`
}

// Input is the create and update payload.
type Input struct {
	UserID         int64   `json:"user_id"`
	FullName       string  `json:"full_name,omitempty"`
	Email          string  `json:"email,omitempty"`
	DateOfBirth    string  `json:"date_of_birth"`
	Gender         string  `json:"gender"`
	PhoneNumber    string  `json:"phone_number"`
	Address        string  `json:"address"`
	BloodType      *string `json:"blood_type,omitempty"`
	MedicalHistory string  `json:"medical_history"`
}

// SortNewestFirst orders patients by creation time, newest first. Ties keep
// their server order.
func SortNewestFirst(list []Patient) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt.Time)
	})
}

// Names maps patient id to display name for tables.
func Names(list []Patient) map[int64]string {
	out := make(map[int64]string, len(list))
	for _, p := range list {
		out[p.ID] = p.FullName
	}
	return out
}
