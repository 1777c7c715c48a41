package dclass

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
)

func TestGatewayInjectsHeaders(t *testing.T) {
	var gotAuth, gotRequestID, gotUA string

	mux := loginTestMux(t)
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotUA = r.Header.Get("User-Agent")
		writeJSON(t, w, http.StatusOK, map[string]any{"jobs": []any{}})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/jobs"}); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if gotAuth != "Bearer access-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("expected a generated X-Request-ID")
	}
	if gotUA != "dclass-go" {
		t.Fatalf("expected default user agent, got %q", gotUA)
	}
}

func TestGatewayNoBearerWhenLoggedOut(t *testing.T) {
	var gotAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]any{"jobs": []any{}})
	})

	client := newTestClient(t, mux)

	if _, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs"}); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("logged-out request must not carry a bearer, got %q", gotAuth)
	}
}

func TestGatewayRetriesAtMostOnce(t *testing.T) {
	var jobCalls, refreshCalls atomic.Int64

	mux := loginTestMux(t)
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		// The rotated token is still rejected downstream.
		writeJSON(t, w, http.StatusOK, map[string]string{"accessToken": "still-bad"})
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, _ *http.Request) {
		jobCalls.Add(1)
		writeJSON(t, w, http.StatusUnauthorized, errorBody("UNAUTHORIZED", "nope"))
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	if _, err := client.Login(ctx, "jae@example.com", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/jobs"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected terminal ErrUnauthorized, got %v", err)
	}

	if got := jobCalls.Load(); got != 2 {
		t.Fatalf("expected original + one retry, got %d calls", got)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("expected a single refresh, got %d", got)
	}
	if got := client.metrics.Value(MetricUnauthorizedTerminal); got != 1 {
		t.Fatalf("expected terminal counter 1, got %d", got)
	}
}

func TestGatewayClassification(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     map[string]any
		sentinel error
	}{
		{"conflict maps to duplicate", http.StatusConflict, errorBody("DUPLICATE_EMAIL", "taken"), ErrDuplicateEmail},
		{"400 maps to rejected", http.StatusBadRequest, errorBody("BAD_INPUT", "nope"), ErrServerRejected},
		{"500 maps to server", http.StatusInternalServerError, errorBody("INTERNAL", "boom"), ErrServer},
		{"503 maps to server", http.StatusServiceUnavailable, nil, ErrServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/jobs", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, tc.status, tc.body)
			})

			client := newTestClient(t, mux)

			_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs"})
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
		})
	}
}

func TestGatewayNetworkFailure(t *testing.T) {
	client, err := New().WithBaseURL("http://127.0.0.1:1").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs"})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if got := client.metrics.Value(MetricNetworkFailure); got != 1 {
		t.Fatalf("expected network failure counter 1, got %d", got)
	}
}

func TestGatewayFlatErrorShapes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/flat", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"code": "BAD", "message": "flat shape"})
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": "proxy says no"})
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/flat"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "BAD" || apiErr.Message != "flat shape" {
		t.Fatalf("flat shape not decoded: %v", err)
	}

	_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/text"})
	if !errors.As(err, &apiErr) || apiErr.Message != "proxy says no" {
		t.Fatalf("string error shape not decoded: %v", err)
	}
}

func TestCallDecodesAndRejectsMalformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"value": "hello"})
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	})

	client := newTestClient(t, mux)
	ctx := context.Background()

	var out struct {
		Value string `json:"value"`
	}
	if err := client.Call(ctx, Request{Method: http.MethodGet, Path: "/ok"}, &out); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out.Value != "hello" {
		t.Fatalf("expected decoded value, got %q", out.Value)
	}

	err := client.Call(ctx, Request{Method: http.MethodGet, Path: "/broken"}, &out)
	if !errors.Is(err, ErrServer) {
		t.Fatalf("malformed 2xx body must classify as ErrServer, got %v", err)
	}
}
