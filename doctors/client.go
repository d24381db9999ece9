package doctors

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/jrsteele09/go-hospital-client/gateway"
)

const (
	doctorsPath        = "/api/doctor/"
	doctorPath         = "/api/doctor/%d/"
	byUserPath         = "/api/doctor/user/%d/"
	bySpecializationFn = "/api/doctor/specialization/%s/"
)

type Client struct {
	api *gateway.Client
}

func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]Doctor, error) {
	var out []Doctor
	if err := c.api.Get(ctx, doctorsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Doctor, error) {
	var out Doctor
	if err := c.api.Get(ctx, gateway.Resource(doctorPath, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByUser returns the doctor record owned by a user account.
func (c *Client) ByUser(ctx context.Context, userID int64) (*Doctor, error) {
	var out Doctor
	if err := c.api.Get(ctx, gateway.Resource(byUserPath, userID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BySpecialization lists one department. The backend answers with either a
// single object or an array; a 404 means nobody works there.
func (c *Client) BySpecialization(ctx context.Context, specialization string) ([]Doctor, error) {
	var raw json.RawMessage
	err := c.api.Get(ctx, gateway.Resource(bySpecializationFn, specialization), &raw)
	if gateway.IsNotFound(err) {
		return []Doctor{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeOneOrMany(raw)
}

func (c *Client) Create(ctx context.Context, in Input) (*Doctor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out Doctor
	if err := c.api.Post(ctx, doctorsPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id int64, in Input) (*Doctor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out Doctor
	if err := c.api.Put(ctx, gateway.Resource(doctorPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, gateway.Resource(doctorPath, id))
}

func (in Input) Validate() error {
	var form gateway.FormErrors
	if in.UserID <= 0 {
		form.Add("user_id", "This field is required.")
	}
	if strings.TrimSpace(in.FullName) == "" {
		form.Add("full_name", "This field is required.")
	}
	if strings.TrimSpace(in.Specialization) == "" {
		form.Add("specialization", "This field is required.")
	}
	if in.YearsOfExperience < 0 {
		form.Add("years_of_experience", "Ensure this value is greater than or equal to 0.")
	}
	if form.Empty() {
		return nil
	}
	return gateway.NewValidationError(form)
}

func decodeOneOrMany(raw json.RawMessage) ([]Doctor, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Doctor{}, nil
	}
	if raw[0] == '[' {
		var out []Doctor
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, &gateway.Error{Kind: gateway.KindUnknown, Err: err}
		}
		return out, nil
	}
	var one Doctor
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, &gateway.Error{Kind: gateway.KindUnknown, Err: err}
	}
	return []Doctor{one}, nil
}
