package consolesdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/proxyconsole/pkg/jwtx"
)

// Status is the position of a Session in its lifecycle.
type Status int

const (
	StatusUninitialized Status = iota
	StatusChecking
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot of who is logged in. IsAuthenticated is true if and
// only if CurrentUser is non-nil.
type State struct {
	CurrentUser     *User
	IsAuthenticated bool
	IsLoading       bool
	IsInitialized   bool
	Status          Status
}

var errStoredTokenExpired = errors.New("stored token has expired")

// Session is the single source of truth for the logged-in operator. It owns
// writes to the token store; the Client only reads the token, except when the
// backend answers 401.
//
// Initialize, Login and Logout are meant to be driven by one operator, one at
// a time. They are not serialized against each other.
type Session struct {
	client *Client
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

// NewSession creates an uninitialized session bound to client and registers
// it for session-expiry notifications.
func NewSession(client *Client) *Session {
	s := &Session{
		client:    client,
		logger:    client.logger,
		now:       time.Now,
		state:     State{Status: StatusUninitialized},
		listeners: make(map[int]func(State)),
	}
	client.OnSessionExpired(s.handleSessionExpired)
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Subscribe registers fn to receive every state transition. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Initialize resolves the stored token into AUTHENTICATED or ANONYMOUS. It
// runs once; later calls are no-ops until Logout resets the session. It never
// fails: every error ends in ANONYMOUS and is only logged.
func (s *Session) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.state.IsInitialized || s.state.Status == StatusChecking {
		s.mu.Unlock()
		return
	}
	s.state.Status = StatusChecking
	s.state.IsLoading = true
	snap := s.snapshot()
	s.mu.Unlock()
	s.notify(snap)

	user, err := s.resolveStoredToken(ctx)
	switch {
	case err != nil:
		s.logger.Warn("session check failed", "error", err)
		s.discardToken(ctx)
		s.transition(func(st *State) {
			st.Status = StatusAnonymous
			st.CurrentUser = nil
			st.IsLoading = false
			st.IsInitialized = true
		})

	case user == nil:
		s.transition(func(st *State) {
			st.Status = StatusAnonymous
			st.CurrentUser = nil
			st.IsLoading = false
			st.IsInitialized = true
		})

	default:
		s.transition(func(st *State) {
			st.Status = StatusAuthenticated
			st.CurrentUser = user
			st.IsLoading = false
			st.IsInitialized = true
		})
	}
}

// resolveStoredToken returns the current user for the stored token, or nil
// without error when no token is stored.
func (s *Session) resolveStoredToken(ctx context.Context) (*User, error) {
	token, err := s.client.Tokens().Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	if jwtx.Expired(token, s.now()) {
		return nil, errStoredTokenExpired
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates against the backend and stores the returned token.
//
// Invalid input is rejected before any call. A success response lacking the
// token or the user is a KindMalformed error and leaves the session and the
// store untouched. Any other failure clears the stored token and leaves the
// session ANONYMOUS. The error is always returned for display.
func (s *Session) Login(ctx context.Context, username, password string) error {
	req := LoginRequest{Username: username, Password: password}
	if err := Validate(req); err != nil {
		return err
	}

	s.transition(func(st *State) { st.IsLoading = true })

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		if IsKind(err, KindMalformed) {
			s.transition(func(st *State) { st.IsLoading = false })
			return err
		}
		s.discardToken(ctx)
		s.transition(func(st *State) {
			st.Status = StatusAnonymous
			st.CurrentUser = nil
			st.IsLoading = false
		})
		return err
	}

	if err := s.client.Tokens().SetToken(ctx, resp.Token); err != nil {
		s.transition(func(st *State) {
			st.Status = StatusAnonymous
			st.CurrentUser = nil
			st.IsLoading = false
		})
		return fmt.Errorf("failed to store token: %w", err)
	}

	s.logger.Info("logged in", "username", resp.User.Username, "role", resp.User.Role())
	s.transition(func(st *State) {
		st.Status = StatusAuthenticated
		st.CurrentUser = resp.User
		st.IsLoading = false
		st.IsInitialized = true
	})
	return nil
}

// Logout removes the stored token and resets the session so the next
// Initialize starts from scratch. The state always ends ANONYMOUS; a store
// failure is returned after the transition.
func (s *Session) Logout(ctx context.Context) error {
	err := s.client.Tokens().ClearToken(ctx)

	s.transition(func(st *State) {
		st.Status = StatusAnonymous
		st.CurrentUser = nil
		st.IsLoading = false
		st.IsInitialized = false
	})

	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// handleSessionExpired runs when any call got a 401. The client has already
// cleared the token. An in-flight Initialize resolves the state itself.
func (s *Session) handleSessionExpired(context.Context) {
	s.mu.RLock()
	checking := s.state.Status == StatusChecking
	s.mu.RUnlock()
	if checking {
		return
	}

	s.transition(func(st *State) {
		st.Status = StatusAnonymous
		st.CurrentUser = nil
		st.IsLoading = false
	})
}

func (s *Session) discardToken(ctx context.Context) {
	if err := s.client.Tokens().ClearToken(ctx); err != nil {
		s.logger.Warn("failed to discard token", "error", err)
	}
}

// transition applies fn under the lock, restores the invariants and notifies
// listeners after the lock is released.
func (s *Session) transition(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.IsAuthenticated = s.state.CurrentUser != nil
	snap := s.snapshot()
	s.mu.Unlock()

	s.notify(snap)
}

// snapshot copies the state. The caller holds the lock.
func (s *Session) snapshot() State {
	st := s.state
	if st.CurrentUser != nil {
		u := *st.CurrentUser
		st.CurrentUser = &u
	}
	return st
}

func (s *Session) notify(st State) {
	s.mu.RLock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}
