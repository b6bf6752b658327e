package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/proxyconsole/internal/console/metrics"
	"github.com/aussiebroadwan/proxyconsole/internal/console/store"
	"github.com/aussiebroadwan/proxyconsole/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
	"github.com/aussiebroadwan/proxyconsole/pkg/cryptox"
	"github.com/aussiebroadwan/proxyconsole/pkg/httpx"
	"github.com/aussiebroadwan/proxyconsole/pkg/slogx"
	"golang.org/x/term"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application wires the console together: local token store, backend
// client and the session built on top of it.
type Application struct {
	cfg    Config
	logger *slog.Logger

	stdin  io.Reader
	lines  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	// readPassword prompts for a secret without echo.
	readPassword func(prompt string) (string, error)

	db      store.Store
	metrics *metrics.Recorder
	client  *consolesdk.Client
	session *consolesdk.Session
}

// Option customises an Application.
type Option func(*Application)

// WithIO replaces the standard streams, mainly for tests.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *Application) {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
	}
}

// New creates an Application with all dependencies initialized.
func New(cfg Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	app.lines = bufio.NewReader(app.stdin)
	app.readPassword = app.promptPassword

	app.logger = slogx.New(slogx.Config{
		Service: "proxy-console",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  app.stderr,
	})

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initClient(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// initDatabase opens the token database and applies migrations.
func (app *Application) initDatabase() error {
	if err := os.MkdirAll(filepath.Dir(app.cfg.TokenDB), 0o700); err != nil {
		return fmt.Errorf("failed to create token db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", app.cfg.TokenDB)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to open token db: %w", err)
	}
	app.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.db.Ping(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to reach token db: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply token db migrations: %w", err)
	}

	app.logger.Debug("token db ready", "path", app.cfg.TokenDB)
	return nil
}

// initClient builds the backend client and the session on top of it.
func (app *Application) initClient() error {
	var sealer store.Sealer
	if app.cfg.TokenKey != "" {
		s, err := cryptox.NewSealer(app.cfg.TokenKey)
		if err != nil {
			return fmt.Errorf("failed to create token sealer: %w", err)
		}
		sealer = s
	}

	app.metrics = metrics.New()

	opts := []consolesdk.Option{
		consolesdk.WithHTTPClient(httpx.NewHTTPClient(httpx.ClientConfig{
			Timeout: consolesdk.DefaultTimeout,
			Logger:  app.logger,
		})),
		consolesdk.WithTokenStore(store.NewTokenStore(app.db.Credentials(), sealer)),
		consolesdk.WithNavigator(cliNavigator{w: app.stderr}),
		consolesdk.WithObserver(app.metrics),
		consolesdk.WithLogger(app.logger),
	}
	if limiter := httpx.NewLimiter(app.cfg.RateLimit()); limiter != nil {
		opts = append(opts, consolesdk.WithLimiter(limiter))
	}

	app.client = consolesdk.NewClient(app.cfg.APIBaseURL, opts...)
	app.session = consolesdk.NewSession(app.client)
	app.session.Subscribe(func(st consolesdk.State) {
		app.metrics.ObserveTransition(st.Status.String())
		app.logger.Debug("session state", "status", st.Status.String(), "loading", st.IsLoading)
	})

	return nil
}

// Run executes one console command. Metrics are flushed whatever the outcome.
func (app *Application) Run(ctx context.Context, args []string) error {
	ctx = slogx.WithContext(ctx, app.logger)
	ctx = consolesdk.WithSession(ctx, app.session)

	err := app.dispatch(ctx, args)

	if mErr := app.metrics.WriteTextfile(app.cfg.MetricsFile); mErr != nil {
		app.logger.Warn("failed to flush metrics", "error", mErr)
	}

	return err
}

// Close releases the token database.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		return fmt.Errorf("failed to close token db: %w", err)
	}
	return nil
}

// promptPassword reads a secret without echo when stdin is a terminal, and a
// plain line otherwise so the console can be scripted.
func (app *Application) promptPassword(prompt string) (string, error) {
	fmt.Fprint(app.stderr, prompt)

	if f, ok := app.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(app.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := app.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
