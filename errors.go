package dclass

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is an exported constant or variable used by the session client.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is an exported constant or variable used by the session client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is an exported constant or variable used by the session client.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNoRefreshToken is an exported constant or variable used by the session client.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrRefreshRejected is an exported constant or variable used by the session client.
	ErrRefreshRejected = errors.New("refresh token rejected")
	// ErrUnauthorized is an exported constant or variable used by the session client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServerRejected is an exported constant or variable used by the session client.
	ErrServerRejected = errors.New("request rejected by server")
	// ErrNetwork is an exported constant or variable used by the session client.
	ErrNetwork = errors.New("network failure")
	// ErrServer is an exported constant or variable used by the session client.
	ErrServer = errors.New("server failure")
	// ErrClientNotReady is an exported constant or variable used by the session client.
	ErrClientNotReady = errors.New("client not initialized")
)

// APIError is the classified form of every non-2xx API response. The gateway
// is the only component that inspects raw status codes and error bodies;
// callers match on the taxonomy sentinels via [errors.Is] and read Code or
// Message for display.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	Body      []byte

	kind error
}

// Error describes the error operation and its observable behavior.
//
// Error may return an error when input validation, dependency calls, or security checks fail.
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != "" {
		return fmt.Sprintf("api error: status %d, code %s: %s", e.Status, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap may return an error when input validation, dependency calls, or security checks fail.
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Unwrap() error {
	if e == nil || e.kind == nil {
		return nil
	}
	return e.kind
}

// errorCodeDuplicateEmail is the domain flag some deployments return alongside
// a 409 on signup.
const errorCodeDuplicateEmail = "DUPLICATE_EMAIL"

// classifyStatus maps a non-2xx response to the error taxonomy. The returned
// error always unwraps to exactly one sentinel.
func classifyStatus(status int, code, message, requestID string, body []byte) error {
	apiErr := &APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Body:      body,
	}

	switch {
	case status == 409 || code == errorCodeDuplicateEmail:
		apiErr.kind = ErrDuplicateEmail
	case status == 401:
		apiErr.kind = ErrUnauthorized
	case status >= 500:
		apiErr.kind = ErrServer
	default:
		apiErr.kind = ErrServerRejected
	}

	return apiErr
}

// remapKind reclassifies a gateway error into a context-specific sentinel, for
// example a login 401 into [ErrInvalidCredentials]. Non-API errors are
// returned as the bare sentinel.
func remapKind(err, kind error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		clone := *apiErr
		clone.kind = kind
		return &clone
	}
	return kind
}
