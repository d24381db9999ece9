package appointments

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-hospital-client/doctors"
	"github.com/jrsteele09/go-hospital-client/gateway"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/patients"
	"github.com/jrsteele09/go-hospital-client/sessions"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionReader is the part of the Session Manager the service needs.
type SessionReader interface {
	Current() (sessions.Session, bool)
}

// Service runs user-triggered appointment operations for the session user.
// Every status change passes the gate before a request is made, and each
// appointment has at most one request in flight.
type Service struct {
	appointments *Client
	patients     *patients.Client
	doctors      *doctors.Client
	session      SessionReader
	log          zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

func NewService(api *gateway.Client, session SessionReader, opts ...ServiceOption) *Service {
	s := &Service{
		appointments: NewClient(api),
		patients:     patients.NewClient(api),
		doctors:      doctors.NewClient(api),
		session:      session,
		log:          log.Logger,
		inflight:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book creates a pending appointment for the session patient. The patient
// record is resolved before the appointment is posted.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if !CanBook(user.Role) {
		return nil, fmt.Errorf("[appointments Book] %s: %w", user.Role, apperrors.ErrForbiddenRole)
	}
	req, err = req.Normalize()
	if err != nil {
		return nil, err
	}

	done, err := s.begin("book")
	if err != nil {
		return nil, err
	}
	defer done()

	patient, err := s.patients.ByUser(ctx, user.ID)
	if gateway.IsNotFound(err) {
		return nil, fmt.Errorf("[appointments Book] user %d: %w", user.ID, apperrors.ErrPatientNotFound)
	}
	if err != nil {
		return nil, err
	}

	appt, err := s.appointments.Create(ctx, CreateInput{
		PatientID: patient.ID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    StatusPending,
		Reason:    req.Reason,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("appointment_id", appt.ID).Int64("doctor_id", appt.DoctorID).Msg("appointment booked")
	return appt, nil
}

// Act reads the appointment's current status and applies action if the gate
// allows it. Actions the role can never take are refused without a request.
func (s *Service) Act(ctx context.Context, id int64, action Action) (*Appointment, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if !MayEver(user.Role, action) {
		return nil, fmt.Errorf("[appointments Act] %s as %s: %w", action, user.Role, apperrors.ErrActionNotAllowed)
	}

	done, err := s.begin(appointmentKey(id))
	if err != nil {
		return nil, err
	}
	defer done()

	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, *appt, action)
}

// ActOn applies action to an appointment whose status the caller already
// holds, such as a row from ForCurrentUser. An illegal action makes no
// request at all.
func (s *Service) ActOn(ctx context.Context, appt Appointment, action Action) (*Appointment, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if _, err := Authorize(appt.Status, user.Role, action); err != nil {
		return nil, err
	}

	done, err := s.begin(appointmentKey(appt.ID))
	if err != nil {
		return nil, err
	}
	defer done()

	return s.apply(ctx, user, appt, action)
}

func (s *Service) apply(ctx context.Context, user users.User, appt Appointment, action Action) (*Appointment, error) {
	target, err := Authorize(appt.Status, user.Role, action)
	if err != nil {
		return nil, err
	}
	updated, err := s.appointments.UpdateStatus(ctx, appt.ID, target)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("appointment_id", appt.ID).Str("action", action.String()).
		Str("from", appt.Status.String()).Str("to", target.String()).Msg("appointment updated")
	return updated, nil
}

// SetStatus is the admin override: any valid status, no transition check.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}
	if !CanOverride(user.Role) {
		return nil, fmt.Errorf("[appointments SetStatus] %s: %w", user.Role, apperrors.ErrForbiddenRole)
	}
	if !status.Valid() {
		var form gateway.FormErrors
		form.Add("status", fmt.Sprintf("%q is not a valid choice.", status))
		return nil, gateway.NewValidationError(form)
	}

	done, err := s.begin(appointmentKey(id))
	if err != nil {
		return nil, err
	}
	defer done()

	updated, err := s.appointments.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("appointment_id", id).Str("to", status.String()).Msg("appointment status overridden")
	return updated, nil
}

// ForCurrentUser lists the appointments the session user should see:
// their own as a patient, their queue as a doctor, everything as an admin.
func (s *Service) ForCurrentUser(ctx context.Context) ([]Appointment, error) {
	user, err := s.actor()
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case users.RolePatient:
		patient, err := s.patients.ByUser(ctx, user.ID)
		if gateway.IsNotFound(err) {
			return nil, fmt.Errorf("[appointments ForCurrentUser] user %d: %w", user.ID, apperrors.ErrPatientNotFound)
		}
		if err != nil {
			return nil, err
		}
		return s.appointments.ByPatient(ctx, patient.ID)
	case users.RoleDoctor:
		doctor, err := s.doctors.ByUser(ctx, user.ID)
		if gateway.IsNotFound(err) {
			return nil, fmt.Errorf("[appointments ForCurrentUser] user %d: %w", user.ID, apperrors.ErrDoctorNotFound)
		}
		if err != nil {
			return nil, err
		}
		return s.appointments.ByDoctor(ctx, doctor.ID)
	case users.RoleAdmin:
		return s.appointments.List(ctx)
	}
	return nil, fmt.Errorf("[appointments ForCurrentUser] %q: %w", user.Role, apperrors.ErrForbiddenRole)
}

func (s *Service) actor() (users.User, error) {
	sess, ok := s.session.Current()
	if !ok {
		return users.User{}, apperrors.ErrNoSession
	}
	return sess.User, nil
}

// begin marks key busy until the returned func is called.
func (s *Service) begin(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, fmt.Errorf("[appointments] %s: %w", key, apperrors.ErrRequestInFlight)
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}

func appointmentKey(id int64) string {
	return fmt.Sprintf("appointment:%d", id)
}
