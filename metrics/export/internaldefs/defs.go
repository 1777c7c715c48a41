package internaldefs

import (
	dclass "github.com/dclass-hq/dclass-go"
)

// CounterDef defines a public type used by dclass APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   dclass.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by dclass APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   dclass.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session client.
var CounterDefs = []CounterDef{
	{ID: dclass.MetricLoginSuccess, Name: "dclass_login_success_total", Help: "Successful login attempts."},
	{ID: dclass.MetricLoginFailure, Name: "dclass_login_failure_total", Help: "Failed login attempts."},
	{ID: dclass.MetricLoginValidationRejected, Name: "dclass_login_validation_rejected_total", Help: "Login attempts rejected before reaching the network."},
	{ID: dclass.MetricRegisterSuccess, Name: "dclass_register_success_total", Help: "Successful registrations."},
	{ID: dclass.MetricRegisterFailure, Name: "dclass_register_failure_total", Help: "Failed registrations."},
	{ID: dclass.MetricRegisterDuplicate, Name: "dclass_register_duplicate_total", Help: "Registrations rejected for an already-taken email."},
	{ID: dclass.MetricRefreshSuccess, Name: "dclass_refresh_success_total", Help: "Successful token refreshes."},
	{ID: dclass.MetricRefreshFailure, Name: "dclass_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: dclass.MetricRefreshCoalesced, Name: "dclass_refresh_coalesced_total", Help: "Refresh attempts that joined an in-flight refresh."},
	{ID: dclass.MetricRequestRetried, Name: "dclass_request_retried_total", Help: "Requests replayed after a successful refresh."},
	{ID: dclass.MetricUnauthorizedTerminal, Name: "dclass_unauthorized_terminal_total", Help: "Requests that stayed unauthorized after the retry cycle."},
	{ID: dclass.MetricNetworkFailure, Name: "dclass_network_failure_total", Help: "Requests that failed before an HTTP status arrived."},
	{ID: dclass.MetricSessionInstalled, Name: "dclass_session_installed_total", Help: "Installed sessions."},
	{ID: dclass.MetricSessionCleared, Name: "dclass_session_cleared_total", Help: "Cleared sessions."},
	{ID: dclass.MetricSessionRestored, Name: "dclass_session_restored_total", Help: "Sessions restored from storage."},
	{ID: dclass.MetricSessionRestoreFailed, Name: "dclass_session_restore_failed_total", Help: "Session restores rejected by the server."},
	{ID: dclass.MetricLogout, Name: "dclass_logout_total", Help: "Logout operations."},
	{ID: dclass.MetricEmailCheck, Name: "dclass_email_check_total", Help: "Email availability checks."},
	{ID: dclass.MetricEmailCheckTakenViaError, Name: "dclass_email_check_taken_via_error_total", Help: "Taken-email answers delivered through the 400 response shape."},
	{ID: dclass.MetricStorageWriteFailed, Name: "dclass_storage_write_failed_total", Help: "Failed session storage writes."},
}

// HistogramDefs is an exported constant or variable used by the session client.
var HistogramDefs = []HistogramDef{
	{ID: dclass.MetricRequestLatency, Name: "dclass_request_latency_seconds", Help: "Request latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session client.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session client.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
