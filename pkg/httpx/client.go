package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aussiebroadwan/proxyconsole/pkg/slogx"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is the time to wait for response headers.
	ResponseHeaderTimeout = 20 * time.Second
)

// ClientConfig configures the outbound HTTP client.
type ClientConfig struct {
	// Timeout bounds a whole call, body included.
	Timeout time.Duration
	// Logger receives a debug line per call. Nil disables call logging.
	Logger *slog.Logger
}

// NewHTTPClient creates an HTTP client for talking to the console backend.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}
	if cfg.Logger != nil {
		transport = slogx.NewTransport(transport, cfg.Logger)
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}
