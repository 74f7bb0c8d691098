// Package session tracks who is logged in against the farm backend and keeps
// the token store in step with it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/tokenstore"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
)

// State is the authentication state of a Session.
type State string

const (
	StateAnonymous         State = "anonymous"
	StatePendingValidation State = "pending_validation"
	StateAuthenticating    State = "authenticating"
	StateAuthenticated     State = "authenticated"
)

// ErrNotAuthenticated is returned when a call needs credentials and none are stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrSessionExpired is returned when the backend rejected the token and it
// could not be refreshed. The session is anonymous afterwards.
var ErrSessionExpired = errors.New("session expired, log in again")

// ErrLoginInProgress is returned when a second login starts before the first ends.
var ErrLoginInProgress = errors.New("login already in progress")

var errNoRefreshToken = errors.New("no refresh token stored")

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	State         State        `json:"state"`
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

// Session owns the current user and the stored credentials. It is safe for
// concurrent use.
type Session struct {
	client farmapi.Client
	tokens tokenstore.Store
	logger *zap.Logger

	mu    sync.RWMutex
	state State
	user  *models.User

	refreshMu sync.Mutex
}

// New builds a session. A token already in the store puts the session in
// StatePendingValidation until Validate confirms it.
func New(client farmapi.Client, tokens tokenstore.Store, logger *zap.Logger) (*Session, error) {
	if client == nil || tokens == nil {
		return nil, errors.New("session needs a client and a token store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	token, err := tokens.Get(tokenstore.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("read stored token: %w", err)
	}

	state := StateAnonymous
	if token != "" {
		state = StatePendingValidation
	}

	return &Session{client: client, tokens: tokens, logger: logger, state: state}, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated is true once a user is cached, after login, register or a
// successful Validate.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.user != nil
}

// User returns a copy of the cached user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Snapshot returns state, authentication flag and user together.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{State: s.state, Authenticated: s.state == StateAuthenticated && s.user != nil}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Login authenticates with email and password. On failure the stored tokens
// and the previous state are left untouched and the backend error is returned
// as is.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	return s.authenticate(ctx, "login", func(ctx context.Context) (*models.AuthResponse, error) {
		return s.client.Login(ctx, email, password)
	}, email)
}

// Register creates an account and logs it in.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.authenticate(ctx, "register", func(ctx context.Context) (*models.AuthResponse, error) {
		return s.client.Register(ctx, req)
	}, req.Email)
}

func (s *Session) authenticate(ctx context.Context, action string, call func(context.Context) (*models.AuthResponse, error), email string) (*models.User, error) {
	s.mu.Lock()
	if s.state == StateAuthenticating {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	previous := s.state
	s.state = StateAuthenticating
	s.mu.Unlock()

	resp, err := call(ctx)
	if err != nil {
		s.setState(previous)
		s.logger.Info(action+" failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if err := s.storeTokens(resp.AccessToken(), resp.Refresh); err != nil {
		s.setState(previous)
		return nil, err
	}

	user := resp.User
	if user == nil {
		user = &models.User{Email: email}
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.logger.Info(action+" succeeded", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return s.User(), nil
}

// Logout ends the session. The backend is told on a best-effort basis; the
// local credentials are always cleared, even when that call fails.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.tokens.Get(tokenstore.KeyAuthToken)
	if err == nil && token != "" {
		if err := s.client.Logout(ctx); err != nil {
			s.logger.Warn("backend logout failed, clearing local session anyway", zap.Error(err))
		}
	}

	return s.reset()
}

// Validate confirms a token found at startup by fetching the profile. A token
// refused with 401 or 403 leaves the session anonymous and returns
// ErrSessionExpired; a network failure keeps it pending.
func (s *Session) Validate(ctx context.Context) error {
	switch s.State() {
	case StateAuthenticated:
		return nil
	case StateAuthenticating:
		return ErrLoginInProgress
	}

	user, err := Call(ctx, s, func(ctx context.Context, c farmapi.Client) (*models.User, error) {
		return c.Profile(ctx)
	})
	if farmapi.IsForbidden(err) {
		s.logger.Info("stored token refused", zap.Error(err))
		if resetErr := s.reset(); resetErr != nil {
			return resetErr
		}
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.logger.Info("stored session validated", zap.Int64("user_id", user.ID))
	return nil
}

// Call runs fn with the session's client. When the backend answers 401 and a
// refresh token is stored, the access token is refreshed once and fn retried
// once. If that fails the session is cleared and ErrSessionExpired returned.
func Call[T any](ctx context.Context, s *Session, fn func(ctx context.Context, c farmapi.Client) (T, error)) (T, error) {
	var zero T

	token, err := s.tokens.Get(tokenstore.KeyAuthToken)
	if err != nil {
		return zero, fmt.Errorf("read stored token: %w", err)
	}
	if token == "" {
		return zero, ErrNotAuthenticated
	}

	result, err := fn(ctx, s.client)
	if err == nil || !farmapi.IsUnauthorized(err) {
		return result, err
	}

	if refreshErr := s.refresh(ctx, token); refreshErr != nil {
		if farmapi.IsNetwork(refreshErr) {
			return zero, refreshErr
		}
		s.logger.Info("token refresh failed", zap.Error(refreshErr))
		return zero, s.expire(err)
	}

	result, err = fn(ctx, s.client)
	if farmapi.IsUnauthorized(err) {
		return zero, s.expire(err)
	}
	return result, err
}

// Do is Call for operations without a result.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, c farmapi.Client) error) error {
	_, err := Call(ctx, s, func(ctx context.Context, c farmapi.Client) (struct{}, error) {
		return struct{}{}, fn(ctx, c)
	})
	return err
}

// refresh swaps the access token. rejected is the token the backend refused;
// if another caller already replaced it, there is nothing to do.
func (s *Session) refresh(ctx context.Context, rejected string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	current, err := s.tokens.Get(tokenstore.KeyAuthToken)
	if err != nil {
		return err
	}
	if current != "" && current != rejected {
		return nil
	}

	refreshToken, err := s.tokens.Get(tokenstore.KeyRefreshToken)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return errNoRefreshToken
	}

	pair, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	newRefresh := pair.Refresh
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	if err := s.storeTokens(pair.Access, newRefresh); err != nil {
		return err
	}

	s.logger.Debug("access token refreshed")
	return nil
}

func (s *Session) expire(cause error) error {
	if err := s.reset(); err != nil {
		s.logger.Error("failed to clear expired session", zap.Error(err))
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

func (s *Session) storeTokens(access, refresh string) error {
	if access == "" {
		return farmapi.ErrMissingToken
	}
	if err := s.tokens.Set(tokenstore.KeyAuthToken, access); err != nil {
		return fmt.Errorf("store auth token: %w", err)
	}
	if err := s.tokens.Set(tokenstore.KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// reset always de-authenticates locally; a store failure is still reported.
func (s *Session) reset() error {
	s.mu.Lock()
	s.user = nil
	s.state = StateAnonymous
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("clear stored tokens: %w", err)
	}
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
