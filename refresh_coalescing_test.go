package dclass

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dclass-hq/dclass-go/storage"
)

func TestConcurrentRefreshMakesOneNetworkCall(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := loginTestMux(t)
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(100 * time.Millisecond)
		writeJSON(t, w, http.StatusOK, map[string]string{"accessToken": "rotated"})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := client.Refresh(ctx)
			if err != nil {
				t.Errorf("Refresh failed: %v", err)
				return
			}
			if token != "rotated" {
				t.Errorf("expected shared rotated token, got %q", token)
			}
		}()
	}
	wg.Wait()

	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 refresh network call, got %d", got)
	}
	if got := client.metrics.Value(MetricRefreshCoalesced); got == 0 {
		t.Fatal("expected coalesced refresh attempts to be counted")
	}

	sess, ok := client.Session()
	if !ok {
		t.Fatal("expected session to survive refresh")
	}
	if sess.AccessToken != "rotated" {
		t.Fatalf("expected rotated token, got %q", sess.AccessToken)
	}
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := loginTestMux(t)
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(150 * time.Millisecond)
		writeJSON(t, w, http.StatusOK, map[string]string{"accessToken": "rotated"})
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer rotated" {
			writeJSON(t, w, http.StatusUnauthorized, errorBody("UNAUTHORIZED", "expired"))
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"jobs": []any{}})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/jobs"})
			if err != nil {
				t.Errorf("request failed: %v", err)
				return
			}
			if resp.Status != http.StatusOK {
				t.Errorf("expected 200 after retry, got %d", resp.Status)
			}
		}()
	}
	wg.Wait()

	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 refresh network call, got %d", got)
	}
}

func TestRefreshWithoutTokenClearsSession(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := client.Refresh(context.Background())
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if client.State() != StateLoggedOut {
		t.Fatal("expected logged out state")
	}
}

func TestRefreshRejectionClearsSession(t *testing.T) {
	mux := loginTestMux(t)
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, errorBody("UNAUTHORIZED", "revoked"))
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	_, err := client.Refresh(ctx)
	if !errors.Is(err, ErrRefreshRejected) {
		t.Fatalf("expected ErrRefreshRejected, got %v", err)
	}
	if client.State() != StateLoggedOut {
		t.Fatal("rejected refresh must clear the session")
	}
}

// interceptStore wraps a Store and observes writes as they happen.
type interceptStore struct {
	storage.Store
	onSet func(key, value string)
}

func (s *interceptStore) Set(ctx context.Context, key, value string) error {
	if s.onSet != nil {
		s.onSet(key, value)
	}
	return s.Store.Set(ctx, key, value)
}

func TestLogoutDuringTokenRotationLeavesStorageClean(t *testing.T) {
	mux := loginTestMux(t)
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{
			"accessToken":  "access-2",
			"refreshToken": "refresh-2",
		})
	})

	store := &interceptStore{Store: storage.NewMemory()}
	client := newTestClientWithStore(t, mux, store)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A logout lands while the rotated refresh token is being written out.
	// Whatever the interleaving, storage must not keep tokens the user just
	// discarded: that would let the next restore resurrect the session.
	var logoutDone sync.WaitGroup
	var fired atomic.Bool
	store.onSet = func(_, value string) {
		if value != "refresh-2" || !fired.CompareAndSwap(false, true) {
			return
		}
		logoutDone.Add(1)
		go func() {
			defer logoutDone.Done()
			if err := client.Logout(ctx); err != nil {
				t.Errorf("Logout failed: %v", err)
			}
		}()
		time.Sleep(50 * time.Millisecond)
	}

	if _, err := client.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	logoutDone.Wait()

	if !fired.Load() {
		t.Fatal("rotated refresh token was never written")
	}
	if client.State() != StateLoggedOut {
		t.Fatal("expected logged out state after logout")
	}
	for _, key := range []string{
		client.config.Storage.AccessTokenKey,
		client.config.Storage.RefreshTokenKey,
		client.config.Storage.UserKey,
	} {
		if _, err := client.store.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected %q cleared after logout, got err %v", key, err)
		}
	}
}

func TestRefreshNetworkFailureKeepsSession(t *testing.T) {
	mux := loginTestMux(t)
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, errorBody("INTERNAL", "boom"))
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	_, err := client.Refresh(ctx)
	if !errors.Is(err, ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
	if client.State() != StateLoggedIn {
		t.Fatal("transient refresh failure must keep the session")
	}
}
