package consolesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/proxyconsole/pkg/idx"
)

// RequestOptions decorates a single call.
type RequestOptions struct {
	// Query is appended to the path as URL parameters.
	Query url.Values

	// Body is encoded as JSON when non-nil.
	Body any

	// Headers are set after the default headers and may override them,
	// except Authorization which always reflects the stored token.
	Headers map[string]string

	// Upload is sent as a multipart/form-data body instead of Body.
	Upload *Upload

	// Route labels the call in metrics, e.g. "/agent/{id}/balance".
	// Defaults to the path.
	Route string
}

// Call sends one request and resolves it to either an Envelope with Code 0 or
// an error. Classified failures are *Error; caller cancellation, body encoding
// and limiter failures are returned unmodified.
func (c *Client) Call(ctx context.Context, method, path string, opts RequestOptions) (*Envelope, error) {
	start := time.Now()
	env, err := c.call(ctx, method, path, opts)

	if c.observer != nil {
		route := opts.Route
		if route == "" {
			route = path
		}
		c.observer.ObserveCall(method, route, outcomeLabel(err), time.Since(start))
	}

	return env, err
}

func (c *Client) call(ctx context.Context, method, path string, opts RequestOptions) (*Envelope, error) {
	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.classifySendError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil && resp.StatusCode != http.StatusUnauthorized {
		return nil, c.classifySendError(ctx, err)
	}

	return c.classifyResponse(ctx, resp, body)
}

// newRequest builds the outbound request. The Authorization header is always
// derived from the token store here so no call can skip it.
func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions) (*http.Request, error) {
	endpoint := c.BaseURL + path
	if len(opts.Query) > 0 {
		endpoint += "?" + opts.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case opts.Upload != nil:
		payload, ct, err := opts.Upload.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = payload, ct

	case opts.Body != nil:
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", idx.New().String())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	req.Header.Del("Authorization")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// classifyResponse maps a received response to an Envelope or *Error. A 401 is
// classified even when its body could only be read in part.
func (c *Client) classifyResponse(ctx context.Context, resp *http.Response, body []byte) (*Envelope, error) {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Info("session expired", "status", resp.StatusCode, "path", resp.Request.URL.Path)
		c.expireSession(ctx)
		msg, code := bodyMessage(body)
		c.logger.Debug("session expired detail", "message", msg, "code", code)
		return nil, &Error{
			Kind:       KindSessionExpired,
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    ErrSessionExpired.Error(),
			Body:       body,
			Err:        ErrSessionExpired,
		}

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, transportError(resp, body)

	default:
		env, err := Canonicalize(resp.StatusCode, body)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("response", "path", resp.Request.URL.Path, "envelope", env.String())
		return env, nil
	}
}

// classifySendError handles failures where no usable response was received.
// Cancellation by the caller is passed through untouched.
func (c *Client) classifySendError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}

	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.logger.Warn("backend unreachable", "error", err)
		return &Error{
			Kind:    KindNetwork,
			Message: ErrNetworkUnreachable.Error(),
			Err:     fmt.Errorf("%w: %w", ErrNetworkUnreachable, err),
		}
	}

	return err
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if kind := KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}
