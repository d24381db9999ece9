package patients

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-hospital-client/gateway"
)

const (
	patientsPath = "/api/patient/"
	patientPath  = "/api/patient/%d/"
	byUserPath   = "/api/patient/user/%d/"
	searchPath   = "/api/patient/search/"
)

type Client struct {
	api *gateway.Client
}

func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Patient, error) {
	var out []Patient
	if err := c.api.Get(ctx, patientsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches name, email or phone. A blank query lists everyone.
func (c *Client) Search(ctx context.Context, query string) ([]Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.List(ctx)
	}
	var out []Patient
	if err := c.api.Get(ctx, gateway.WithQuery(searchPath, url.Values{"q": {query}}), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Patient, error) {
	var out Patient
	if err := c.api.Get(ctx, gateway.Resource(patientPath, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByUser returns the patient record owned by a user account.
func (c *Client) ByUser(ctx context.Context, userID int64) (*Patient, error) {
	var out Patient
	if err := c.api.Get(ctx, gateway.Resource(byUserPath, userID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, in Input) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out Patient
	if err := c.api.Post(ctx, patientsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id int64, in Input) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out Patient
	if err := c.api.Put(ctx, gateway.Resource(patientPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, gateway.Resource(patientPath, id))
}

func (in Input) Validate() error {
	var form gateway.FormErrors
	if in.UserID <= 0 {
		form.Add("user_id", "This field is required.")
	}
	if in.DateOfBirth == "" {
		form.Add("date_of_birth", "This field is required.")
	} else if _, err := time.Parse(time.DateOnly, in.DateOfBirth); err != nil {
		form.Add("date_of_birth", "Date has wrong format. Use YYYY-MM-DD.")
	}
	if strings.TrimSpace(in.Gender) == "" {
		form.Add("gender", "This field is required.")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		form.Add("phone_number", "This field is required.")
	}
	if strings.TrimSpace(in.Address) == "" {
		form.Add("address", "This field is required.")
	}
	if form.Empty() {
		return nil
	}
	return gateway.NewValidationError(form)
}
