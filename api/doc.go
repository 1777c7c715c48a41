// Package api wraps the marketplace resource endpoints: jobs, applications,
// reviews, notifications, and verification status.
//
// Every service routes through [Caller], which the root client implements, so
// bearer injection, the 401 refresh-and-retry cycle, and error classification
// apply uniformly. Services hold no state beyond the caller and are safe for
// concurrent use.
//
// # What this package must NOT do
//
//   - Touch tokens or session state; that is the root client's job.
//   - Interpret HTTP status codes; errors arrive already classified.
package api
