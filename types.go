package dclass

import "time"

// Role identifies the account type of a marketplace user.
type Role string

const (
	// RoleInstructor is an exported constant or variable used by the session client.
	RoleInstructor Role = "instructor"
	// RoleAcademy is an exported constant or variable used by the session client.
	RoleAcademy Role = "academy"
	// RoleAdmin is an exported constant or variable used by the session client.
	RoleAdmin Role = "admin"
)

// Valid describes the valid operation and its observable behavior.
//
// Valid may return an error when input validation, dependency calls, or security checks fail.
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) Valid() bool {
	switch r {
	case RoleInstructor, RoleAcademy, RoleAdmin:
		return true
	}
	return false
}

// SessionState is the lifecycle state of the client session.
type SessionState uint8

const (
	// StateLoggedOut is an exported constant or variable used by the session client.
	StateLoggedOut SessionState = iota
	// StateLoggedIn is an exported constant or variable used by the session client.
	StateLoggedIn
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s SessionState) String() string {
	if s == StateLoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// User is the authenticated account as returned by the /auth/me and login
// endpoints.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Verified     bool   `json:"isVerified,omitempty"`
}

// Session defines a public type used by dclass APIs.
//
// Session instances are snapshots: mutating a returned Session never affects
// client state. At most one access token is active per session at any time.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string

	// ExpiresAt is derived from the access token when it is a JWT; zero for
	// opaque tokens.
	ExpiresAt time.Time
}

// RegisterInput is the input for [Client.Register]. Email, Password, Name,
// Role, and Phone are required; the server enforces the rest of its signup
// policy.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Phone    string `json:"phone"`
}

func (in RegisterInput) validate() error {
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Phone == "" {
		return ErrValidation
	}
	if !in.Role.Valid() {
		return ErrValidation
	}
	return nil
}
