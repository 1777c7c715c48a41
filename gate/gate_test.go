package gate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dclass "github.com/dclass-hq/dclass-go"
)

type stubSource struct {
	session   dclass.Session
	hasSess   bool
	initErr   error
	initCalls atomic.Int64
}

func (s *stubSource) EnsureInit(context.Context) error {
	s.initCalls.Add(1)
	return s.initErr
}

func (s *stubSource) Session() (dclass.Session, bool) {
	return s.session, s.hasSess
}

func loggedIn(role dclass.Role) *stubSource {
	return &stubSource{
		session: dclass.Session{
			User:        dclass.User{ID: "u-1", Role: role},
			AccessToken: "access-1",
		},
		hasSess: true,
	}
}

func defaultRules() []Rule {
	return []Rule{
		{Prefix: "/instructor", RequiresAuth: true, AllowedRoles: []dclass.Role{dclass.RoleInstructor}},
		{Prefix: "/academy", RequiresAuth: true, AllowedRoles: []dclass.Role{dclass.RoleAcademy}},
		{Prefix: "/admin", RequiresAuth: true, AllowedRoles: []dclass.Role{dclass.RoleAdmin}},
		{Prefix: "/profile", RequiresAuth: true},
	}
}

func TestPublicPathAllowed(t *testing.T) {
	g := New(DefaultConfig(), &stubSource{}, defaultRules())

	d, err := g.Evaluate(context.Background(), "/jobs")
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)
}

func TestGuestRedirectedToLoginWithReturnTarget(t *testing.T) {
	g := New(DefaultConfig(), &stubSource{}, defaultRules())

	d, err := g.Evaluate(context.Background(), "/instructor/jobs")
	require.NoError(t, err)
	assert.Equal(t, ActionRedirectLogin, d.Action)
	assert.Equal(t, "/login?redirect=%2Finstructor%2Fjobs", d.Location)
}

func TestWrongRoleRedirectedToOwnHome(t *testing.T) {
	g := New(DefaultConfig(), loggedIn(dclass.RoleInstructor), defaultRules())

	d, err := g.Evaluate(context.Background(), "/admin/dashboard")
	require.NoError(t, err)
	assert.Equal(t, ActionRedirectHome, d.Action)
	assert.Equal(t, "/instructor/jobs", d.Location)
}

func TestMatchingRoleAllowed(t *testing.T) {
	g := New(DefaultConfig(), loggedIn(dclass.RoleAcademy), defaultRules())

	d, err := g.Evaluate(context.Background(), "/academy/jobs")
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)
}

func TestAuthenticatedUserLeavesLoginPage(t *testing.T) {
	g := New(DefaultConfig(), loggedIn(dclass.RoleAdmin), defaultRules())

	d, err := g.Evaluate(context.Background(), "/login")
	require.NoError(t, err)
	assert.Equal(t, ActionRedirectHome, d.Action)
	assert.Equal(t, "/admin/dashboard", d.Location)
}

func TestGuestMayVisitLoginPage(t *testing.T) {
	g := New(DefaultConfig(), &stubSource{}, defaultRules())

	d, err := g.Evaluate(context.Background(), "/login")
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)
}

func TestUnknownRoleFallsBackToDefaultHome(t *testing.T) {
	g := New(DefaultConfig(), loggedIn(dclass.Role("support")), defaultRules())

	d, err := g.Evaluate(context.Background(), "/admin/dashboard")
	require.NoError(t, err)
	assert.Equal(t, ActionRedirectHome, d.Action)
	assert.Equal(t, "/", d.Location)
}

func TestPrefixMatchesOnSegmentBoundary(t *testing.T) {
	g := New(DefaultConfig(), &stubSource{}, defaultRules())

	// "/administrator" must not match the "/admin" rule.
	d, err := g.Evaluate(context.Background(), "/administrator")
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)
}

func TestMostSpecificRuleWins(t *testing.T) {
	rules := append(defaultRules(), Rule{Prefix: "/admin/public"})
	g := New(DefaultConfig(), &stubSource{}, rules)

	d, err := g.Evaluate(context.Background(), "/admin/public/stats")
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)
}

func TestEvaluateAwaitsInit(t *testing.T) {
	src := loggedIn(dclass.RoleInstructor)
	g := New(DefaultConfig(), src, defaultRules())

	_, err := g.Evaluate(context.Background(), "/instructor/jobs")
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.initCalls.Load())
}

func TestEvaluateSurfacesInitFailure(t *testing.T) {
	src := &stubSource{initErr: errors.New("storage down")}
	g := New(DefaultConfig(), src, defaultRules())

	_, err := g.Evaluate(context.Background(), "/profile")
	require.Error(t, err)
}

func TestMiddlewareRedirects(t *testing.T) {
	g := New(DefaultConfig(), &stubSource{}, defaultRules())

	var served bool
	handler := g.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		served = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/instructor/jobs?page=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Finstructor%2Fjobs%3Fpage%3D2", rec.Header().Get("Location"))
	assert.False(t, served)
}

func TestMiddlewarePassesThrough(t *testing.T) {
	g := New(DefaultConfig(), loggedIn(dclass.RoleInstructor), defaultRules())

	var served bool
	handler := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/instructor/jobs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, served)
}

func TestMiddlewareReportsInitFailure(t *testing.T) {
	g := New(DefaultConfig(), &stubSource{initErr: errors.New("storage down")}, defaultRules())

	handler := g.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
