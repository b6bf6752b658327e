package consolesdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListUsers returns one page of end users visible to the operator.
func (c *Client) ListUsers(ctx context.Context, f CustomerFilter) (*Page[Customer], error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	query := f.values("pageSize")
	if f.Username != "" {
		query.Set("username", f.Username)
	}
	if f.Status != "" {
		query.Set("status", f.Status)
	}

	env, err := c.Call(ctx, http.MethodGet, "/user/list", RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}

	page, err := DecodeData[Page[Customer]](env)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateUser creates an end user. The backend may answer without a payload,
// in which case the returned customer is nil.
func (c *Client) CreateUser(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	env, err := c.Call(ctx, http.MethodPost, "/open/app/user/create", RequestOptions{Body: req})
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, nil
	}

	customer, err := DecodeData[Customer](env)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateUserStatus enables or disables an end user.
func (c *Client) UpdateUserStatus(ctx context.Context, id int64, req CustomerStatusUpdate) error {
	if err := Validate(req); err != nil {
		return err
	}

	_, err := c.Call(ctx, http.MethodPut, fmt.Sprintf("/open/app/user/%d/status", id), RequestOptions{
		Query: url.Values{"status": {req.Status}},
		Route: "/open/app/user/{id}/status",
	})
	return err
}
