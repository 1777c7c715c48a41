// Package token inspects access tokens without verifying them.
//
// The client has no signing keys; verification is the server's job. The only
// thing the client wants from a token is its expiry (and optionally the
// subject) so it can expose Session.ExpiresAt. Opaque non-JWT tokens are a
// supported and silent case: inspection yields zero values, never an error
// that blocks a login.
//
// # What this package must NOT do
//
//   - Verify signatures or reject tokens.
//   - Import the root dclass package (no upward imports).
package token
