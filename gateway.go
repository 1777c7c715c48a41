package dclass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request describes one API call routed through the gateway. Body is JSON
// encoded when non-nil.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// noRetry exempts auth-plane calls (login, refresh, signup, logout,
	// check-email) from the 401 refresh-and-retry cycle.
	noRetry bool
}

// Response defines a public type used by dclass APIs.
//
// Response instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

const requestIDHeader = "X-Request-ID"

// errorEnvelope is the wire shape of API failures. The nested form is
// canonical; the flat fields cover older deployments.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeErrorBody(body []byte) (code, message string) {
	if len(body) == 0 {
		return "", ""
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error.Code != "" || env.Error.Message != "" {
			return env.Error.Code, env.Error.Message
		}
		if env.Code != "" || env.Message != "" {
			return env.Code, env.Message
		}
	}

	// Some proxies answer with {"error": "text"}.
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return "", flat.Error
	}

	return "", ""
}

// Do describes the do operation and its observable behavior.
//
// Do may return an error when input validation, dependency calls, or security checks fail.
// Do does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.do(ctx, req, false)
}

func (c *Client) do(ctx context.Context, req Request, retried bool) (*Response, error) {
	httpReq, requestID, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	c.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		c.metrics.Inc(MetricNetworkFailure)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.config.HTTP.MaxBodyBytes))
	if err != nil {
		c.metrics.Inc(MetricNetworkFailure)
		return nil, fmt.Errorf("%w: reading response body: %v", ErrNetwork, err)
	}

	if echoed := httpResp.Header.Get(requestIDHeader); echoed != "" {
		requestID = echoed
	}

	resp := &Response{
		Status:    httpResp.StatusCode,
		Header:    httpResp.Header,
		Body:      body,
		RequestID: requestID,
	}

	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}

	code, message := decodeErrorBody(body)
	classified := classifyStatus(resp.Status, code, message, requestID, body)

	if resp.Status != http.StatusUnauthorized || req.noRetry {
		return resp, classified
	}

	if retried {
		// The retried request carried a freshly minted token and was still
		// rejected. Do not loop.
		c.metrics.Inc(MetricUnauthorizedTerminal)
		return resp, classified
	}

	if _, refreshErr := c.refreshShared(ctx); refreshErr != nil {
		// The refresh outcome supersedes the original 401: its failure path
		// already tore the session down (or surfaced a retryable failure).
		if errors.Is(refreshErr, ErrRefreshRejected) || errors.Is(refreshErr, ErrNoRefreshToken) {
			c.metrics.Inc(MetricUnauthorizedTerminal)
		}
		return nil, refreshErr
	}

	c.metrics.Inc(MetricRequestRetried)
	return c.do(ctx, req, true)
}

// Call describes the call operation and its observable behavior.
//
// Call may return an error when input validation, dependency calls, or security checks fail.
// Call does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &APIError{
			Status:    resp.Status,
			Message:   "malformed response body",
			RequestID: resp.RequestID,
			Body:      resp.Body,
			kind:      ErrServer,
		}
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := strings.TrimSuffix(c.config.API.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		if method == http.MethodGet || method == http.MethodHead {
			return nil, "", fmt.Errorf("%w: %s requests cannot carry a body", ErrValidation, method)
		}
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("%w: encoding request body", ErrValidation)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("%w: building request", ErrValidation)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if c.config.HTTP.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.HTTP.UserAgent)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if token := c.currentAccessToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, requestID, nil
}
