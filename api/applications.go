package api

import (
	"context"
	"net/http"
	"net/url"

	dclass "github.com/dclass-hq/dclass-go"
)

// Applications defines a public type used by dclass APIs.
//
// Applications instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Applications struct {
	caller Caller
}

// NewApplications describes the newapplications operation and its observable behavior.
//
// NewApplications may return an error when input validation, dependency calls, or security checks fail.
// NewApplications does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewApplications(caller Caller) *Applications {
	return &Applications{caller: caller}
}

type applicationResponse struct {
	Application Application `json:"application"`
}

type applicationListResponse struct {
	Applications []Application `json:"applications"`
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Applications) Create(ctx context.Context, jobID, message string) (Application, error) {
	if jobID == "" {
		return Application{}, dclass.ErrValidation
	}

	var resp applicationResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/applications",
		Body: map[string]string{
			"jobId":   jobID,
			"message": message,
		},
	}, &resp)
	if err != nil {
		return Application{}, err
	}
	return resp.Application, nil
}

// Mine describes the mine operation and its observable behavior.
//
// Mine may return an error when input validation, dependency calls, or security checks fail.
// Mine does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Applications) Mine(ctx context.Context) ([]Application, error) {
	var resp applicationListResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/applications/my",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Applications, nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Applications) Get(ctx context.Context, id string) (Application, error) {
	if id == "" {
		return Application{}, dclass.ErrValidation
	}

	var resp applicationResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/applications/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return Application{}, err
	}
	return resp.Application, nil
}

// Accept describes the accept operation and its observable behavior.
//
// Accept may return an error when input validation, dependency calls, or security checks fail.
// Accept does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Applications) Accept(ctx context.Context, id string) (Application, error) {
	return s.transition(ctx, id, "accept")
}

// Reject describes the reject operation and its observable behavior.
//
// Reject may return an error when input validation, dependency calls, or security checks fail.
// Reject does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Applications) Reject(ctx context.Context, id string) (Application, error) {
	return s.transition(ctx, id, "reject")
}

// Cancel describes the cancel operation and its observable behavior.
//
// Cancel may return an error when input validation, dependency calls, or security checks fail.
// Cancel does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Applications) Cancel(ctx context.Context, id string) (Application, error) {
	return s.transition(ctx, id, "cancel")
}

func (s *Applications) transition(ctx context.Context, id, action string) (Application, error) {
	if id == "" {
		return Application{}, dclass.ErrValidation
	}

	var resp applicationResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/applications/" + url.PathEscape(id) + "/" + action,
	}, &resp)
	if err != nil {
		return Application{}, err
	}
	return resp.Application, nil
}
