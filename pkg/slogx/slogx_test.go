package slogx_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/proxyconsole/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("info"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel(""))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.Default(), slogx.FromContext(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := slogx.WithCommand(slogx.WithContext(context.Background(), logger), "whoami")
	slogx.FromContext(ctx).Info("hello")

	require.Contains(t, buf.String(), "command=whoami")
}

func TestTransportLogsRequestID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: slogx.NewTransport(nil, logger)}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/current-user", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	out := buf.String()
	require.Contains(t, out, "req_id=01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
	require.Contains(t, out, "path=/auth/current-user")
	require.Contains(t, out, "status=418")
}
