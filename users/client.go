package users

import (
	"context"

	"github.com/jrsteele09/go-hospital-client/gateway"
)

const (
	usersPath = "/api/auth/users/"
	userPath  = "/api/auth/users/%d/"
)

// Client wraps the backend's user endpoints.
type Client struct {
	api *gateway.Client
}

func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.api.Get(ctx, usersPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.api.Get(ctx, gateway.Resource(userPath, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, in UserInput) (*User, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	var out User
	if err := c.api.Post(ctx, usersPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id int64, in UserInput) (*User, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	var out User
	if err := c.api.Put(ctx, gateway.Resource(userPath, id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, gateway.Resource(userPath, id))
}

func (in UserInput) validate(create bool) error {
	var form gateway.FormErrors
	if in.Email == "" {
		form.Add("email", "This field is required.")
	}
	if in.FullName == "" {
		form.Add("full_name", "This field is required.")
	}
	if in.Role != "" && !in.Role.Valid() {
		form.Add("role", "Select a valid role.")
	}
	if create && in.Password == "" {
		form.Add("password", "This field is required.")
	}
	if form.Empty() {
		return nil
	}
	return gateway.NewValidationError(form)
}
