package dclass

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "new@example.com",
		Password: "hunter2",
		Name:     "New User",
		Role:     RoleAcademy,
		Phone:    "010-1234-5678",
	}
}

func TestRegisterSucceedsWithoutAutoLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"user": map[string]any{"id": "u-9", "email": "new@example.com", "name": "New User", "role": "academy"},
		})
	})

	client := newTestClient(t, mux)

	if err := client.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if client.State() != StateLoggedOut {
		t.Fatal("register must not log the user in")
	}
	if got := client.metrics.Value(MetricRegisterSuccess); got != 1 {
		t.Fatalf("expected register success counter 1, got %d", got)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusConflict, errorBody("DUPLICATE_EMAIL", "email already registered"))
	})

	client := newTestClient(t, mux)

	err := client.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if got := client.metrics.Value(MetricRegisterDuplicate); got != 1 {
		t.Fatalf("expected duplicate counter 1, got %d", got)
	}
}

func TestRegisterDuplicateViaDomainFlag(t *testing.T) {
	// Some deployments flag the duplicate on a 400 instead of a 409.
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, errorBody("DUPLICATE_EMAIL", "email already registered"))
	})

	client := newTestClient(t, mux)

	if err := client.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"missing name", func(in *RegisterInput) { in.Name = "" }},
		{"missing phone", func(in *RegisterInput) { in.Phone = "" }},
		{"unknown role", func(in *RegisterInput) { in.Role = Role("student") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegisterInput()
			tc.mutate(&in)
			if err := client.Register(context.Background(), in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
