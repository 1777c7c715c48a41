package dclass

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dclass-hq/dclass-go/storage"
)

func loginTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, authSuccessBody("access-1", "refresh-1"))
	})
	return mux
}

func TestLogoutClearsSessionAndStorage(t *testing.T) {
	mux := loginTestMux(t)
	var serverLogout bool
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		serverLogout = true
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := client.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if !serverLogout {
		t.Fatal("expected server logout call")
	}
	if client.State() != StateLoggedOut {
		t.Fatal("expected logged out state")
	}
	if _, err := client.store.Get(ctx, client.config.Storage.AccessTokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cleared access token, got err %v", err)
	}
	if _, err := client.store.Get(ctx, client.config.Storage.RefreshTokenKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected cleared refresh token, got err %v", err)
	}
}

func TestLogoutSucceedsDespiteServerFailure(t *testing.T) {
	mux := loginTestMux(t)
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, errorBody("INTERNAL", "boom"))
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := client.Logout(ctx); err != nil {
		t.Fatalf("Logout must swallow server failures, got %v", err)
	}
	if client.State() != StateLoggedOut {
		t.Fatal("local session must be cleared even when the server call fails")
	}
}

func TestLogoutWhileLoggedOutIsIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, mux)

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
}
