package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	dclass "github.com/dclass-hq/dclass-go"
)

// Reviews defines a public type used by dclass APIs.
//
// Reviews instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Reviews struct {
	caller Caller
}

// NewReviews describes the newreviews operation and its observable behavior.
//
// NewReviews may return an error when input validation, dependency calls, or security checks fail.
// NewReviews does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewReviews(caller Caller) *Reviews {
	return &Reviews{caller: caller}
}

type reviewListResponse struct {
	Reviews []Review      `json:"reviews"`
	Summary ReviewSummary `json:"summary"`
	HasMore bool          `json:"hasMore"`
}

type reviewResponse struct {
	Review Review `json:"review"`
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Only an instructor with an accepted application for the job may review the
// academy; the server enforces that and answers 400 DUPLICATE when the
// instructor already reviewed it.
func (s *Reviews) Create(ctx context.Context, in ReviewInput) (Review, error) {
	if err := in.validate(); err != nil {
		return Review{}, err
	}

	var resp reviewResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/reviews",
		Body:   in,
	}, &resp)
	if err != nil {
		return Review{}, err
	}
	return resp.Review, nil
}

// ForAcademy describes the foracademy operation and its observable behavior.
//
// ForAcademy may return an error when input validation, dependency calls, or security checks fail.
// ForAcademy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Reviews) ForAcademy(ctx context.Context, academyID string, opts ReviewListOptions) ([]Review, ReviewSummary, error) {
	if academyID == "" {
		return nil, ReviewSummary{}, dclass.ErrValidation
	}

	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.SortBy != "" {
		query.Set("sortBy", opts.SortBy)
	}

	var resp reviewListResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/academies/" + url.PathEscape(academyID) + "/reviews",
		Query:  query,
	}, &resp)
	if err != nil {
		return nil, ReviewSummary{}, err
	}
	return resp.Reviews, resp.Summary, nil
}

// Mine describes the mine operation and its observable behavior.
//
// Mine may return an error when input validation, dependency calls, or security checks fail.
// Mine does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Reviews) Mine(ctx context.Context) ([]Review, error) {
	var resp struct {
		Reviews []Review `json:"reviews"`
		Total   int      `json:"total"`
	}
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/reviews/me",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Reviews) Get(ctx context.Context, id string) (Review, error) {
	if id == "" {
		return Review{}, dclass.ErrValidation
	}

	var resp reviewResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/reviews/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return Review{}, err
	}
	return resp.Review, nil
}

// Update describes the update operation and its observable behavior.
//
// Update may return an error when input validation, dependency calls, or security checks fail.
// Update does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Reviews) Update(ctx context.Context, id string, in ReviewInput) (Review, error) {
	if id == "" {
		return Review{}, dclass.ErrValidation
	}
	if err := in.validate(); err != nil {
		return Review{}, err
	}

	var resp reviewResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPut,
		Path:   "/reviews/" + url.PathEscape(id),
		Body:   in,
	}, &resp)
	if err != nil {
		return Review{}, err
	}
	return resp.Review, nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Reviews) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dclass.ErrValidation
	}

	return s.caller.Call(ctx, dclass.Request{
		Method: http.MethodDelete,
		Path:   "/reviews/" + url.PathEscape(id),
	}, nil)
}

// Report describes the report operation and its observable behavior.
//
// Report may return an error when input validation, dependency calls, or security checks fail.
// Report does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Reviews) Report(ctx context.Context, id, reason, description string) error {
	if id == "" || reason == "" {
		return dclass.ErrValidation
	}

	return s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/reviews/" + url.PathEscape(id) + "/report",
		Body: map[string]string{
			"reason":      reason,
			"description": description,
		},
	}, nil)
}
