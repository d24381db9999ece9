// Package doctors is the doctor directory: the model the backend serves and
// a client for its endpoints.
package doctors

import "github.com/jrsteele09/go-hospital-client/internal/utils"

// Specializations are the departments the directory groups doctors by.
var Specializations = []string{"Emergency", "Pediatric", "Gynecology", "Cardiology", "Neurology", "Psychiatry"}

type Doctor struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user_id"`
	FullName          string          `json:"full_name"`
	Specialization    string          `json:"specialization"`
	YearsOfExperience int             `json:"years_of_experience"`
	LicenseNumber     string          `json:"license_number"`
	PhoneNumber       string          `json:"phone_number"`
	CreatedAt         utils.Timestamp `json:"created_at"`
}

// Input is the create and update payload.
type Input struct {
	UserID            int64  `json:"user_id"`
	FullName          string `json:"full_name"`
	Specialization    string `json:"specialization"`
	YearsOfExperience int    `json:"years_of_experience"`
	LicenseNumber     string `json:"license_number"`
	PhoneNumber       string `json:"phone_number"`
}

// Names maps doctor id to display name for tables.
func Names(list []Doctor) map[int64]string {
	out := make(map[int64]string, len(list))
	for _, d := range list {
		out[d.ID] = d.FullName
	}
	return out
}
