package dclass

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dclass-hq/dclass-go/storage"
	"github.com/dclass-hq/dclass-go/token"
)

// Client defines a public type used by dclass APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config     Config
	httpClient *http.Client
	store      storage.Store
	logger     zerolog.Logger
	metrics    *Metrics
	audit      *auditDispatcher

	flight   singleflight.Group
	initDone atomic.Bool

	// storeMu serializes storage mutations. Every session transition bumps
	// the generation before touching storage, and every guarded write
	// re-checks the generation after taking this lock, so a clear can never
	// be overwritten by a token write that raced it.
	storeMu sync.Mutex

	mu           sync.RWMutex
	user         *User
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	// generation increments on every session install and clear. Slow
	// operations that resolved against an older generation must not write
	// their result back.
	generation uint64
}

// authPayload is the wire shape shared by the login and signup endpoints.
type authPayload struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) currentAccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// Session describes the session operation and its observable behavior.
//
// Session may return an error when input validation, dependency calls, or security checks fail.
// Session does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil || c.accessToken == "" {
		return Session{}, false
	}
	return Session{
		User:         *c.user,
		AccessToken:  c.accessToken,
		RefreshToken: c.refreshToken,
		ExpiresAt:    c.expiresAt,
	}, true
}

// State describes the state operation and its observable behavior.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) State() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user != nil && c.accessToken != "" {
		return StateLoggedIn
	}
	return StateLoggedOut
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	c.audit.Close()
}

/*
====================================
SESSION TRANSITIONS
====================================
*/

// installSession commits a fresh session: memory first so the new identity is
// immediately visible, then persistence, whose failure is logged but never
// surfaced.
func (c *Client) installSession(ctx context.Context, user User, accessToken, refreshToken string) {
	c.mu.Lock()
	u := user
	c.user = &u
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.expiresAt = token.ExpiryOf(accessToken)
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	c.metrics.Inc(MetricSessionInstalled)

	c.persistCurrent(ctx, generation, c.config.Storage.AccessTokenKey, accessToken)
	c.persistCurrent(ctx, generation, c.config.Storage.RefreshTokenKey, refreshToken)
	if data, err := json.Marshal(user); err == nil {
		c.persistCurrent(ctx, generation, c.config.Storage.UserKey, string(data))
	}
}

// installAccessToken swaps in a rotated access token unless the session moved
// on while the refresh was in flight.
func (c *Client) installAccessToken(ctx context.Context, accessToken string, generation uint64) bool {
	c.mu.Lock()
	if c.generation != generation {
		c.mu.Unlock()
		return false
	}
	c.accessToken = accessToken
	c.expiresAt = token.ExpiryOf(accessToken)
	c.mu.Unlock()

	c.persistCurrent(ctx, generation, c.config.Storage.AccessTokenKey, accessToken)
	return true
}

func (c *Client) clearSession(ctx context.Context) {
	c.mu.Lock()
	wasLoggedIn := c.accessToken != "" || c.user != nil
	c.user = nil
	c.accessToken = ""
	c.refreshToken = ""
	c.expiresAt = time.Time{}
	c.generation++
	c.mu.Unlock()

	if wasLoggedIn {
		c.metrics.Inc(MetricSessionCleared)
		c.emitAudit(ctx, auditEventSessionCleared, true, "", "", "", nil, nil)
	}

	c.storeMu.Lock()
	err := c.store.Delete(ctx,
		c.config.Storage.AccessTokenKey,
		c.config.Storage.RefreshTokenKey,
		c.config.Storage.UserKey,
	)
	c.storeMu.Unlock()
	if err != nil {
		c.logger.Warn().Err(err).Msg("session storage delete failed")
	}
}

// persistCurrent writes a session key only while the session that produced the
// value is still the live one. The generation re-check under storeMu closes
// the window where a logout lands between an in-memory install and its
// storage write: the stale write is skipped instead of resurrecting tokens
// the clear already deleted.
func (c *Client) persistCurrent(ctx context.Context, generation uint64, key, value string) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.RLock()
	stale := c.generation != generation
	c.mu.RUnlock()
	if stale {
		return
	}

	if err := c.store.Set(ctx, key, value); err != nil {
		c.metrics.Inc(MetricStorageWriteFailed)
		c.logger.Warn().Err(err).Str("key", key).Msg("session storage write failed")
	}
}

/*
====================================
AUTH OPERATIONS
====================================
*/

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		c.metrics.Inc(MetricLoginValidationRejected)
		return Session{}, ErrValidation
	}

	var payload authPayload
	err := c.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   c.config.API.LoginPath,
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
		noRetry: true,
	}, &payload)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			err = remapKind(err, ErrInvalidCredentials)
		}
		c.metrics.Inc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, "", "", apiRequestID(err), err, nil)
		return Session{}, err
	}

	if payload.AccessToken == "" || payload.RefreshToken == "" {
		err := &APIError{
			Status:  http.StatusOK,
			Message: "login response missing tokens",
			kind:    ErrServer,
		}
		c.metrics.Inc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", err, nil)
		return Session{}, err
	}

	c.installSession(ctx, payload.User, payload.AccessToken, payload.RefreshToken)
	c.metrics.Inc(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, true, payload.User.ID, payload.User.Role, "", nil, nil)

	sess, _ := c.Session()
	return sess, nil
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A successful registration does not log the user in; callers follow up with
// [Client.Login].
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	if err := in.validate(); err != nil {
		c.metrics.Inc(MetricRegisterFailure)
		return err
	}

	var payload struct {
		User User `json:"user"`
	}
	err := c.Call(ctx, Request{
		Method:  http.MethodPost,
		Path:    c.config.API.SignupPath,
		Body:    in,
		noRetry: true,
	}, &payload)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			c.metrics.Inc(MetricRegisterDuplicate)
			c.emitAudit(ctx, auditEventRegisterDuplicate, false, "", in.Role, apiRequestID(err), err, nil)
		} else {
			c.metrics.Inc(MetricRegisterFailure)
			c.emitAudit(ctx, auditEventRegisterFailure, false, "", in.Role, apiRequestID(err), err, nil)
		}
		return err
	}

	c.metrics.Inc(MetricRegisterSuccess)
	c.emitAudit(ctx, auditEventRegisterSuccess, true, payload.User.ID, in.Role, "", nil, nil)
	return nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context) error {
	// Server-side invalidation is best effort; the local session is gone
	// either way.
	_, err := c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    c.config.API.LogoutPath,
		noRetry: true,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}

	c.clearSession(ctx)
	c.metrics.Inc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, true, "", "", "", nil, nil)
	return nil
}

// Me describes the me operation and its observable behavior.
//
// Me may return an error when input validation, dependency calls, or security checks fail.
// Me does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Me(ctx context.Context) (User, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   c.config.API.MePath,
	})
	if err != nil {
		return User{}, err
	}

	var wrapped struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err == nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}

	var user User
	if err := json.Unmarshal(resp.Body, &user); err != nil || user.ID == "" {
		return User{}, &APIError{
			Status:    resp.Status,
			Message:   "malformed profile response",
			RequestID: resp.RequestID,
			Body:      resp.Body,
			kind:      ErrServer,
		}
	}
	return user, nil
}

// CheckEmailAvailable describes the checkemailavailable operation and its observable behavior.
//
// CheckEmailAvailable may return an error when input validation, dependency calls, or security checks fail.
// CheckEmailAvailable does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, ErrValidation
	}

	c.metrics.Inc(MetricEmailCheck)

	query := url.Values{}
	query.Set("email", email)

	var result struct {
		Available *bool `json:"available"`
	}
	err := c.Call(ctx, Request{
		Method:  http.MethodGet,
		Path:    c.config.API.CheckEmailPath,
		Query:   query,
		noRetry: true,
	}, &result)
	if err == nil {
		if result.Available == nil {
			return false, &APIError{
				Status:  http.StatusOK,
				Message: "check-email response missing available field",
				kind:    ErrServer,
			}
		}
		c.emitAudit(ctx, auditEventEmailCheck, true, "", "", "", nil, func() map[string]string {
			return map[string]string{"available": boolString(*result.Available)}
		})
		return *result.Available, nil
	}

	// Some deployed backends answer 400 with {"available": false} instead of
	// the canonical 200 shape. Treat that as a taken address, not a failure.
	if c.config.EmailCheck.TolerateErrorShape {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			var alt struct {
				Available *bool `json:"available"`
			}
			if jsonErr := json.Unmarshal(apiErr.Body, &alt); jsonErr == nil && alt.Available != nil && !*alt.Available {
				c.metrics.Inc(MetricEmailCheckTakenViaError)
				c.emitAudit(ctx, auditEventEmailCheck, true, "", "", apiErr.RequestID, nil, func() map[string]string {
					return map[string]string{"available": "false"}
				})
				return false, nil
			}
		}
	}

	c.emitAudit(ctx, auditEventEmailCheck, false, "", "", apiRequestID(err), err, nil)
	return false, err
}

/*
====================================
SESSION RESTORE
====================================
*/

// Init restores a persisted session, if any. A failed restore is a handled
// outcome, never an error: the client ends up cleanly logged out. Only a
// storage backend that cannot be read at all surfaces an error.
func (c *Client) Init(ctx context.Context) error {
	accessToken, err := c.store.Get(ctx, c.config.Storage.AccessTokenKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	refreshToken, err := c.store.Get(ctx, c.config.Storage.RefreshTokenKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if accessToken == "" && refreshToken == "" {
		return nil
	}

	// Stage the tokens so the profile fetch can authenticate (and refresh on
	// a 401), but hold off publishing a user until the server confirms them.
	c.mu.Lock()
	c.user = nil
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.expiresAt = token.ExpiryOf(accessToken)
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	user, err := c.Me(ctx)
	if err != nil {
		c.mu.RLock()
		stale := c.generation != generation
		c.mu.RUnlock()
		if stale {
			// A login or logout won the race; its state stands.
			return nil
		}
		c.logger.Warn().Err(err).Msg("session restore failed, clearing")
		c.clearSession(ctx)
		c.metrics.Inc(MetricSessionRestoreFailed)
		c.emitAudit(ctx, auditEventSessionRestoreFailed, false, "", "", apiRequestID(err), err, nil)
		return nil
	}

	c.mu.Lock()
	if c.generation != generation {
		// A login or logout won the race; its state stands.
		c.mu.Unlock()
		return nil
	}
	u := user
	c.user = &u
	c.mu.Unlock()

	if data, jsonErr := json.Marshal(user); jsonErr == nil {
		c.persistCurrent(ctx, generation, c.config.Storage.UserKey, string(data))
	}

	c.metrics.Inc(MetricSessionRestored)
	c.emitAudit(ctx, auditEventSessionRestored, true, user.ID, user.Role, "", nil, nil)
	return nil
}

// EnsureInit describes the ensureinit operation and its observable behavior.
//
// EnsureInit may return an error when input validation, dependency calls, or security checks fail.
// EnsureInit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) EnsureInit(ctx context.Context) error {
	if c.initDone.Load() {
		return nil
	}
	_, err, _ := c.flight.Do("init", func() (any, error) {
		if c.initDone.Load() {
			return nil, nil
		}
		if err := c.Init(ctx); err != nil {
			return nil, err
		}
		c.initDone.Store(true)
		return nil, nil
	})
	return err
}

func apiRequestID(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RequestID
	}
	return ""
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
