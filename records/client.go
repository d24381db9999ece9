package records

import (
	"context"

	"github.com/jrsteele09/go-hospital-client/gateway"
)

const (
	recordsPath   = "/api/medical-records/"
	recordPath    = "/api/medical-records/%d/"
	byPatientPath = "/api/medical-records/patient/%d/"
	byDoctorPath  = "/api/medical-records/doctor/%d/"
)

type Client struct {
	api *gateway.Client
}

func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]MedicalRecord, error) {
	var out []MedicalRecord
	if err := c.api.Get(ctx, recordsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*MedicalRecord, error) {
	var out MedicalRecord
	if err := c.api.Get(ctx, gateway.Resource(recordPath, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByPatient lists a patient's records. The backend answers 404 when there
// are none, which is returned as an empty list.
func (c *Client) ByPatient(ctx context.Context, patientID int64) ([]MedicalRecord, error) {
	return c.listBy(ctx, gateway.Resource(byPatientPath, patientID))
}

func (c *Client) ByDoctor(ctx context.Context, doctorID int64) ([]MedicalRecord, error) {
	return c.listBy(ctx, gateway.Resource(byDoctorPath, doctorID))
}

func (c *Client) Create(ctx context.Context, d Draft) (*MedicalRecord, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var out MedicalRecord
	if err := c.api.Post(ctx, recordsPath, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) listBy(ctx context.Context, path string) ([]MedicalRecord, error) {
	var out []MedicalRecord
	err := c.api.Get(ctx, path, &out)
	if gateway.IsNotFound(err) {
		return []MedicalRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
