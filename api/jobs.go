package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	dclass "github.com/dclass-hq/dclass-go"
)

// Jobs defines a public type used by dclass APIs.
//
// Jobs instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Jobs struct {
	caller Caller
}

// NewJobs describes the newjobs operation and its observable behavior.
//
// NewJobs may return an error when input validation, dependency calls, or security checks fail.
// NewJobs does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewJobs(caller Caller) *Jobs {
	return &Jobs{caller: caller}
}

type jobListResponse struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
}

type jobResponse struct {
	Job Job `json:"job"`
}

// List describes the list operation and its observable behavior.
//
// List may return an error when input validation, dependency calls, or security checks fail.
// List does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Jobs) List(ctx context.Context, filter JobFilter) ([]Job, int, error) {
	query := url.Values{}
	if filter.Region != "" {
		query.Set("region", filter.Region)
	}
	if len(filter.Genres) > 0 {
		query.Set("genres", strings.Join(filter.Genres, ","))
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Sort != "" {
		query.Set("sort", filter.Sort)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var resp jobListResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/jobs",
		Query:  query,
	}, &resp)
	if err != nil {
		return nil, 0, err
	}
	return resp.Jobs, resp.Total, nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Jobs) Get(ctx context.Context, id string) (Job, error) {
	if id == "" {
		return Job{}, dclass.ErrValidation
	}

	var resp jobResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/jobs/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return Job{}, err
	}
	return resp.Job, nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Jobs) Create(ctx context.Context, in JobInput) (Job, error) {
	if in.Title == "" || in.Description == "" {
		return Job{}, dclass.ErrValidation
	}

	var resp jobResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/jobs",
		Body:   in,
	}, &resp)
	if err != nil {
		return Job{}, err
	}
	return resp.Job, nil
}

// Update describes the update operation and its observable behavior.
//
// Update may return an error when input validation, dependency calls, or security checks fail.
// Update does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Jobs) Update(ctx context.Context, id string, in JobInput) (Job, error) {
	if id == "" {
		return Job{}, dclass.ErrValidation
	}

	var resp jobResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPut,
		Path:   "/jobs/" + url.PathEscape(id),
		Body:   in,
	}, &resp)
	if err != nil {
		return Job{}, err
	}
	return resp.Job, nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Jobs) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dclass.ErrValidation
	}

	return s.caller.Call(ctx, dclass.Request{
		Method: http.MethodDelete,
		Path:   "/jobs/" + url.PathEscape(id),
	}, nil)
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Jobs) Close(ctx context.Context, id string) (Job, error) {
	if id == "" {
		return Job{}, dclass.ErrValidation
	}

	var resp jobResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/jobs/" + url.PathEscape(id) + "/close",
	}, &resp)
	if err != nil {
		return Job{}, err
	}
	return resp.Job, nil
}
