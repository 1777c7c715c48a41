package gate

import (
	"context"
	"net/url"
	"sort"
	"strings"

	dclass "github.com/dclass-hq/dclass-go"
)

// SessionSource is the slice of the session client the gate needs. The root
// client satisfies it.
type SessionSource interface {
	EnsureInit(ctx context.Context) error
	Session() (dclass.Session, bool)
}

// Action defines a public type used by dclass APIs.
//
// Action instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Action uint8

const (
	// ActionAllow is an exported constant or variable used by the route gate.
	ActionAllow Action = iota
	// ActionRedirectLogin is an exported constant or variable used by the route gate.
	ActionRedirectLogin
	// ActionRedirectHome is an exported constant or variable used by the route gate.
	ActionRedirectHome
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a Action) String() string {
	switch a {
	case ActionRedirectLogin:
		return "redirect_login"
	case ActionRedirectHome:
		return "redirect_home"
	default:
		return "allow"
	}
}

// Decision is the outcome of evaluating one navigation. Location is set for
// the redirect actions and empty for allow.
type Decision struct {
	Action   Action
	Location string
}

// Rule defines a public type used by dclass APIs.
//
// Rule instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Rule struct {
	// Prefix matches the navigation path by segment boundary: "/admin"
	// covers "/admin" and "/admin/users" but not "/administrator".
	Prefix string

	RequiresAuth bool

	// AllowedRoles restricts the rule to the listed roles. Empty means any
	// authenticated role (when RequiresAuth) or anyone.
	AllowedRoles []dclass.Role
}

// Config defines a public type used by dclass APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	LoginPath     string
	RedirectParam string
	RoleHomes     map[dclass.Role]string
	DefaultHome   string
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		LoginPath:     "/login",
		RedirectParam: "redirect",
		RoleHomes: map[dclass.Role]string{
			dclass.RoleInstructor: "/instructor/jobs",
			dclass.RoleAcademy:    "/academy/jobs",
			dclass.RoleAdmin:      "/admin/dashboard",
		},
		DefaultHome: "/",
	}
}

// Gate defines a public type used by dclass APIs.
//
// Gate instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Gate struct {
	cfg    Config
	rules  []Rule
	source SessionSource
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config, source SessionSource, rules []Rule) *Gate {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.RedirectParam == "" {
		cfg.RedirectParam = "redirect"
	}
	if cfg.DefaultHome == "" {
		cfg.DefaultHome = "/"
	}

	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	// Longest prefix first, so the most specific rule wins.
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Prefix) > len(ordered[j].Prefix)
	})

	return &Gate{
		cfg:    cfg,
		rules:  ordered,
		source: source,
	}
}

// Evaluate describes the evaluate operation and its observable behavior.
//
// Evaluate may return an error when input validation, dependency calls, or security checks fail.
// Evaluate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gate) Evaluate(ctx context.Context, path string) (Decision, error) {
	if err := g.source.EnsureInit(ctx); err != nil {
		return Decision{}, err
	}

	sess, authenticated := g.source.Session()

	// An authenticated user has no business on the login page.
	if authenticated && path == g.cfg.LoginPath {
		return Decision{
			Action:   ActionRedirectHome,
			Location: g.roleHome(sess.User.Role),
		}, nil
	}

	rule, matched := g.match(path)
	if !matched {
		return Decision{Action: ActionAllow}, nil
	}

	if rule.RequiresAuth && !authenticated {
		return Decision{
			Action:   ActionRedirectLogin,
			Location: g.loginRedirect(path),
		}, nil
	}

	if len(rule.AllowedRoles) > 0 {
		if !authenticated {
			return Decision{
				Action:   ActionRedirectLogin,
				Location: g.loginRedirect(path),
			}, nil
		}
		if !roleAllowed(sess.User.Role, rule.AllowedRoles) {
			return Decision{
				Action:   ActionRedirectHome,
				Location: g.roleHome(sess.User.Role),
			}, nil
		}
	}

	return Decision{Action: ActionAllow}, nil
}

func (g *Gate) match(path string) (Rule, bool) {
	for _, rule := range g.rules {
		if prefixMatch(path, rule.Prefix) {
			return rule, true
		}
	}
	return Rule{}, false
}

func prefixMatch(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

func (g *Gate) loginRedirect(path string) string {
	q := url.Values{}
	q.Set(g.cfg.RedirectParam, path)
	return g.cfg.LoginPath + "?" + q.Encode()
}

func (g *Gate) roleHome(role dclass.Role) string {
	if home, ok := g.cfg.RoleHomes[role]; ok {
		return home
	}
	return g.cfg.DefaultHome
}

func roleAllowed(role dclass.Role, allowed []dclass.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
