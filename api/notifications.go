package api

import (
	"context"
	"net/http"
	"net/url"

	dclass "github.com/dclass-hq/dclass-go"
)

// Notifications defines a public type used by dclass APIs.
//
// Notifications instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Notifications struct {
	caller Caller
}

// NewNotifications describes the newnotifications operation and its observable behavior.
//
// NewNotifications may return an error when input validation, dependency calls, or security checks fail.
// NewNotifications does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewNotifications(caller Caller) *Notifications {
	return &Notifications{caller: caller}
}

type notificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

// List describes the list operation and its observable behavior.
//
// List may return an error when input validation, dependency calls, or security checks fail.
// List does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Notifications) List(ctx context.Context) ([]Notification, int, error) {
	var resp notificationListResponse
	err := s.caller.Call(ctx, dclass.Request{
		Method: http.MethodGet,
		Path:   "/notifications",
	}, &resp)
	if err != nil {
		return nil, 0, err
	}
	return resp.Notifications, resp.Unread, nil
}

// MarkRead describes the markread operation and its observable behavior.
//
// MarkRead may return an error when input validation, dependency calls, or security checks fail.
// MarkRead does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Notifications) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return dclass.ErrValidation
	}

	return s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/notifications/" + url.PathEscape(id) + "/read",
	}, nil)
}

// MarkAllRead describes the markallread operation and its observable behavior.
//
// MarkAllRead may return an error when input validation, dependency calls, or security checks fail.
// MarkAllRead does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Notifications) MarkAllRead(ctx context.Context) error {
	return s.caller.Call(ctx, dclass.Request{
		Method: http.MethodPost,
		Path:   "/notifications/read-all",
	}, nil)
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Notifications) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dclass.ErrValidation
	}

	return s.caller.Call(ctx, dclass.Request{
		Method: http.MethodDelete,
		Path:   "/notifications/" + url.PathEscape(id),
	}, nil)
}
