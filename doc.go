// Package dclass is the Go client for the D-Class job-marketplace API. It owns
// the client-side session lifecycle: login, registration, token refresh with
// single-retry-on-401 semantics, and restore-on-startup, with token material
// persisted through a pluggable key-value store.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
// Concurrent requests that hit an expired access token share a single in-flight
// refresh; the refresh endpoint is never called twice for one expiry.
//
// # Architecture boundaries
//
// dclass is the public surface. It exposes [Client], [Builder], [Config], the
// error taxonomy, and value types (Session, User, MetricsSnapshot). Route
// authorization lives in the gate subpackage, token persistence in storage,
// access-token inspection in token, and typed REST modules in api.
//
// # What this package must NOT do
//
//   - Interpret domain-specific error bodies beyond the documented
//     email-availability special case.
//   - Mutate session state outside the defined Client operations.
//   - Expose storage backends or raw HTTP transport details in its public API.
//
// # Session state machine
//
// LoggedOut → (login success) → LoggedIn → (refresh success) → LoggedIn →
// (logout | refresh rejection | restore failure) → LoggedOut. No other
// transitions exist; every mutation goes through the Client.
package dclass
