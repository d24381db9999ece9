package records

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/users"
)

type SessionReader interface {
	Current() (sessions.Session, bool)
}

// Service runs record operations as the session user. Only doctors write
// records; patients read their own.
type Service struct {
	records  *Client
	doctors  *doctors.Client
	patients *patients.Client
	session  SessionReader
}

func NewService(api *gateway.Client, session SessionReader) *Service {
	return &Service{
		records:  NewClient(api),
		doctors:  doctors.NewClient(api),
		patients: patients.NewClient(api),
		session:  session,
	}
}

// Add validates d, resolves the session doctor's record and posts the draft
// under that doctor.
func (s *Service) Add(ctx context.Context, d Draft) (*MedicalRecord, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if !user.IsDoctor() {
		return nil, fmt.Errorf("[records Add] %s: %w", user.Role, apperrors.ErrForbiddenRole)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.ByUser(ctx, user.ID)
	if gateway.IsNotFound(err) {
		return nil, fmt.Errorf("[records Add] user %d: %w", user.ID, apperrors.ErrDoctorNotFound)
	}
	if err != nil {
		return nil, err
	}
	d.DoctorID = doctor.ID
	return s.records.Create(ctx, d)
}

// ForPatient lists one patient's records for a doctor or admin.
func (s *Service) ForPatient(ctx context.Context, patientID int64) ([]MedicalRecord, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if user.IsPatient() {
		return nil, fmt.Errorf("[records ForPatient] %s: %w", user.Role, apperrors.ErrForbiddenRole)
	}
	return s.records.ByPatient(ctx, patientID)
}

// Mine lists the session patient's own records.
func (s *Service) Mine(ctx context.Context) ([]MedicalRecord, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if !user.IsPatient() {
		return nil, fmt.Errorf("[records Mine] %s: %w", user.Role, apperrors.ErrForbiddenRole)
	}
	patient, err := s.patients.ByUser(ctx, user.ID)
	if gateway.IsNotFound(err) {
		return nil, fmt.Errorf("[records Mine] user %d: %w", user.ID, apperrors.ErrPatientNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.records.ByPatient(ctx, patient.ID)
}

func (s *Service) actor() (users.User, error) {
	sess, ok := s.session.Current()
	if !ok {
		return users.User{}, apperrors.ErrNoSession
	}
	return sess.User, nil
}
