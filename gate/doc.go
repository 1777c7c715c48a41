// Package gate decides whether a navigation may proceed and where to send it
// otherwise.
//
// A [Gate] holds an ordered rule table keyed by path prefix. Evaluation waits
// for session restore, then applies three checks in order: authenticated users
// never sit on the login page, protected paths require a session, and
// role-restricted paths require a matching role. Denials are redirects, never
// errors: unauthenticated users go to the login path with the original
// destination preserved in a query parameter, wrong-role users go to their
// role's home.
//
// # Architecture boundaries
//
//   - gate reads session state through [SessionSource]; it never performs
//     network calls of its own beyond what EnsureInit does.
//   - gate decides, callers redirect. The [Gate.Middleware] helper is a thin
//     adapter over Evaluate for net/http servers.
//
// # What this package must NOT do
//
//   - Mutate the session (no logins, logouts, or refreshes).
//   - Inspect tokens; role checks use the restored user only.
package gate
