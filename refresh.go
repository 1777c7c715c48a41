package dclass

import (
	"context"
	"errors"
	"net/http"
)

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// On success the returned string is the newly installed access token.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refreshShared(ctx)
}

// refreshShared collapses concurrent refresh attempts into one network call.
// Every waiter observes the same outcome.
func (c *Client) refreshShared(ctx context.Context) (string, error) {
	v, err, shared := c.flight.Do("refresh", func() (any, error) {
		return c.refreshOnce(ctx)
	})
	if shared {
		c.metrics.Inc(MetricRefreshCoalesced)
	}
	if err != nil {
		return "", err
	}
	token, _ := v.(string)
	return token, nil
}

func (c *Client) refreshOnce(ctx context.Context) (string, error) {
	c.mu.RLock()
	refreshToken := c.refreshToken
	generation := c.generation
	c.mu.RUnlock()

	if refreshToken == "" {
		// Nothing to refresh with; a session limbo of "no tokens but still
		// logged in" is worse than a clean logout.
		c.clearSession(ctx)
		c.metrics.Inc(MetricRefreshFailure)
		return "", ErrNoRefreshToken
	}

	var result struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	err := c.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   c.config.API.RefreshPath,
		Body: map[string]string{
			"refreshToken": refreshToken,
		},
		noRetry: true,
	}, &result)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrServerRejected) {
			c.clearSession(ctx)
			c.metrics.Inc(MetricRefreshFailure)
			remapped := remapKind(err, ErrRefreshRejected)
			c.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", apiRequestID(err), remapped, nil)
			return "", remapped
		}

		// Transient failure: the session survives, the caller may retry.
		c.metrics.Inc(MetricRefreshFailure)
		return "", err
	}

	if result.AccessToken == "" {
		c.clearSession(ctx)
		c.metrics.Inc(MetricRefreshFailure)
		err := &APIError{
			Status:  http.StatusOK,
			Message: "refresh response missing access token",
			kind:    ErrRefreshRejected,
		}
		c.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", "", err, nil)
		return "", err
	}

	if !c.installAccessToken(ctx, result.AccessToken, generation) {
		// The session changed underneath us; the newer state wins and this
		// token is discarded.
		return result.AccessToken, nil
	}

	if result.RefreshToken != "" && result.RefreshToken != refreshToken {
		c.mu.Lock()
		if c.generation == generation {
			c.refreshToken = result.RefreshToken
		}
		c.mu.Unlock()
		c.persistCurrent(ctx, generation, c.config.Storage.RefreshTokenKey, result.RefreshToken)
	}

	c.metrics.Inc(MetricRefreshSuccess)
	c.emitAudit(ctx, auditEventRefreshSuccess, true, "", "", "", nil, nil)
	return result.AccessToken, nil
}
