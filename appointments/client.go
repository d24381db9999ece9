package appointments

import (
	"context"

	"github.com/jrsteele09/go-hospital-client/gateway"
)

const (
	appointmentsPath = "/api/appointment/"
	appointmentPath  = "/api/appointment/%d/"
	byPatientPath    = "/api/appointment/patient/%d/"
	byDoctorPath     = "/api/appointment/doctor/%d/"
)

// Client wraps the appointment endpoints without any workflow checks. Use
// Service for anything a user triggers.
type Client struct {
	api *gateway.Client
}

func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.api.Get(ctx, appointmentsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Appointment, error) {
	var out Appointment
	if err := c.api.Get(ctx, gateway.Resource(appointmentPath, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByPatient lists a patient's appointments; a 404 is an empty list.
func (c *Client) ByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return c.listBy(ctx, gateway.Resource(byPatientPath, patientID))
}

// ByDoctor lists a doctor's appointments; a 404 is an empty list.
func (c *Client) ByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return c.listBy(ctx, gateway.Resource(byDoctorPath, doctorID))
}

func (c *Client) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	var out Appointment
	if err := c.api.Post(ctx, appointmentsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus sends PATCH {status}. It does not consult the gate.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	var out Appointment
	if err := c.api.Patch(ctx, gateway.Resource(appointmentPath, id), statusPatch{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) listBy(ctx context.Context, path string) ([]Appointment, error) {
	var out []Appointment
	err := c.api.Get(ctx, path, &out)
	if gateway.IsNotFound(err) {
		return []Appointment{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
