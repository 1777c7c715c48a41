package api

import (
	"context"
	"net/http"

	dclass "github.com/dclass-hq/dclass-go"
)

// Verification defines a public type used by dclass APIs.
//
// Verification instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Document submission is a multipart file upload and is not part of this
// client; callers can only observe the state of a review that is already
// under way.
type Verification struct {
	caller Caller
}

// NewVerification describes the newverification operation and its observable behavior.
//
// NewVerification may return an error when input validation, dependency calls, or security checks fail.
// NewVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewVerification(caller Caller) *Verification {
	return &Verification{caller: caller}
}

// Status describes the status operation and its observable behavior.
//
// Status may return an error when input validation, dependency calls, or security checks fail.
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Verification) Status(ctx context.Context) (VerificationStatus, error) {
	var status VerificationStatus
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/verification/status",
	}, &status)
	if err != nil {
		return VerificationStatus{}, err
	}
	return status, nil
}
