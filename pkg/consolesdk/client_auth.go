package consolesdk

import (
	"context"
	"net/http"
	"net/url"
)

// CurrentUser returns the operator the stored token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	env, err := c.Call(ctx, http.MethodGet, "/auth/current-user", RequestOptions{})
	if err != nil {
		return nil, err
	}

	user, err := DecodeData[User](env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token. It does not store the token; use
// Session.Login for that. A success response without both token and user is
// reported as KindMalformed.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	env, err := c.Call(ctx, http.MethodPost, "/auth/login", RequestOptions{Body: req})
	if err != nil {
		return nil, err
	}

	if !env.HasData() {
		return nil, newMalformedError("login response has no data")
	}

	var resp LoginResponse
	if err := env.Decode(&resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Token == "":
		return nil, newMalformedError("login response has no token")
	case resp.User == nil:
		return nil, newMalformedError("login response has no user")
	}

	return &resp, nil
}

// ChangePassword changes the logged-in operator's password. The backend takes
// both passwords as query parameters.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := Validate(req); err != nil {
		return err
	}

	query := url.Values{
		"old_password": {req.OldPassword},
		"new_password": {req.NewPassword},
	}

	_, err := c.Call(ctx, http.MethodPost, "/auth/password", RequestOptions{Query: query})
	return err
}
