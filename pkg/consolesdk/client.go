package consolesdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every outbound call. A call that exceeds it fails
// without an HTTP response and is classified as KindNetwork.
const DefaultTimeout = 30 * time.Second

// Limiter throttles outbound calls. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Observer is told about the outcome of every call. Outcome is "success" or
// the Kind label of the failure, "error" for unclassified failures.
type Observer interface {
	ObserveCall(method, route, outcome string, duration time.Duration)
}

// Client is the single call surface for the proxy resale backend. It attaches
// the stored bearer token to every request and normalizes every response into
// an Envelope or a classified *Error.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens    TokenStore
	navigator Navigator
	limiter   Limiter
	observer  Observer
	logger    *slog.Logger

	mu             sync.Mutex
	expiryHandlers []func(ctx context.Context)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The caller is responsible
// for its timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.HTTPClient = h
		}
	}
}

// WithTokenStore sets where the credential token is read from.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) {
		if s != nil {
			c.tokens = s
		}
	}
}

// WithNavigator sets what happens when the backend reports the session expired.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithLimiter throttles outbound calls.
func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithObserver records call outcomes, e.g. into Prometheus.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger used for classification and expiry events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "https://console.example.com/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens:    NewMemoryTokenStore(""),
		navigator: noopNavigator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the token store the client reads credentials from.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// OnSessionExpired registers fn to run after the stored token has been cleared
// because the backend answered 401. Handlers run before the navigator.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiryHandlers = append(c.expiryHandlers, fn)
}

func (c *Client) sessionExpiredHandlers() []func(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]func(ctx context.Context){}, c.expiryHandlers...)
}

// expireSession is the only side effect of response classification: clear the
// stored token, tell the session, then send the operator to the login entry
// point. It runs exactly once per 401 response.
func (c *Client) expireSession(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if err := c.tokens.ClearToken(ctx); err != nil {
		c.logger.Warn("failed to clear expired token", "error", err)
	}

	for _, fn := range c.sessionExpiredHandlers() {
		fn(ctx)
	}

	c.navigator.RedirectToLogin(ctx, ErrSessionExpired)
}
