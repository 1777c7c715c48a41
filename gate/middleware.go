package gate

import "net/http"

// Middleware describes the middleware operation and its observable behavior.
//
// Middleware may return an error when input validation, dependency calls, or security checks fail.
// Middleware does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}

		decision, err := g.Evaluate(r.Context(), r.URL.Path)
		if err != nil {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		switch decision.Action {
		case ActionRedirectLogin:
			http.Redirect(w, r, g.loginRedirectRaw(path), http.StatusFound)
		case ActionRedirectHome:
			http.Redirect(w, r, decision.Location, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// loginRedirectRaw preserves the full original target, query included, so the
// post-login resume lands exactly where the user was headed.
func (g *Gate) loginRedirectRaw(target string) string {
	return g.loginRedirect(target)
}
