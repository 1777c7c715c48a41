package dclass

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventRegisterSuccess      = "register_success"
	auditEventRegisterFailure      = "register_failure"
	auditEventRegisterDuplicate    = "register_duplicate"
	auditEventRefreshSuccess       = "refresh_success"
	auditEventRefreshInvalid       = "refresh_invalid"
	auditEventLogout               = "logout"
	auditEventSessionCleared       = "session_cleared"
	auditEventSessionRestored      = "session_restored"
	auditEventSessionRestoreFailed = "session_restore_failed"
	auditEventEmailCheck           = "email_check"
)

// AuditErrorCode defines a public type used by dclass APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrValidation         AuditErrorCode = "validation"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrDuplicateEmail     AuditErrorCode = "duplicate_email"
	auditErrNoRefreshToken     AuditErrorCode = "no_refresh_token"
	auditErrRefreshRejected    AuditErrorCode = "refresh_rejected"
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrRejected           AuditErrorCode = "rejected"
	auditErrNetwork            AuditErrorCode = "network"
	auditErrServer             AuditErrorCode = "server_failure"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	role Role,
	requestID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Role:      role,
		RequestID: requestID,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrValidation):
		return auditErrValidation
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicateEmail
	case errors.Is(err, ErrNoRefreshToken):
		return auditErrNoRefreshToken
	case errors.Is(err, ErrRefreshRejected):
		return auditErrRefreshRejected
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrServerRejected):
		return auditErrRejected
	case errors.Is(err, ErrNetwork):
		return auditErrNetwork
	case errors.Is(err, ErrServer):
		return auditErrServer
	default:
		return auditErrInternal
	}
}
