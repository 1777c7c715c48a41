package dclass

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by dclass APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API        APIConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	EmailCheck EmailCheckConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by dclass APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL string

	LoginPath      string
	SignupPath     string
	LogoutPath     string
	RefreshPath    string
	MePath         string
	CheckEmailPath string
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by dclass APIs.
//
// HTTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the keys under which token material is persisted. The
// keys are configuration rather than constants; absence of every key is a
// valid logged-out state.
type StorageConfig struct {
	Prefix          string
	AccessTokenKey  string
	RefreshTokenKey string
	UserKey         string

	// TTL bounds how long persisted tokens outlive the process. Zero keeps
	// them until explicitly cleared.
	TTL time.Duration
}

/*
====================================
EMAIL CHECK CONFIG
====================================
*/

// EmailCheckConfig defines a public type used by dclass APIs.
//
// The canonical check-email contract is 200 with {"available": bool}. Some
// deployed backends instead answer 400 with {"available": false} for a taken
// address; TolerateErrorShape keeps that variant a non-error outcome.
type EmailCheckConfig struct {
	TolerateErrorShape bool
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by dclass APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by dclass APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			LoginPath:      "/auth/login",
			SignupPath:     "/auth/signup",
			LogoutPath:     "/auth/logout",
			RefreshPath:    "/auth/refresh",
			MePath:         "/auth/me",
			CheckEmailPath: "/auth/check-email",
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
			UserAgent:    "dclass-go",
		},
		Storage: StorageConfig{
			Prefix:          "dclass",
			AccessTokenKey:  "access_token",
			RefreshTokenKey: "refresh_token",
			UserKey:         "user_info",
		},
		EmailCheck: EmailCheckConfig{
			TolerateErrorShape: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}

	for _, p := range []string{
		c.API.LoginPath,
		c.API.SignupPath,
		c.API.LogoutPath,
		c.API.RefreshPath,
		c.API.MePath,
		c.API.CheckEmailPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("API paths must start with /")
		}
	}

	if c.HTTP.Timeout <= 0 {
		return errors.New("HTTP Timeout must be positive")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.New("HTTP MaxBodyBytes must be positive")
	}

	if c.Storage.AccessTokenKey == "" || c.Storage.RefreshTokenKey == "" || c.Storage.UserKey == "" {
		return errors.New("storage keys must be non-empty")
	}
	if c.Storage.AccessTokenKey == c.Storage.RefreshTokenKey ||
		c.Storage.AccessTokenKey == c.Storage.UserKey ||
		c.Storage.RefreshTokenKey == c.Storage.UserKey {
		return errors.New("storage keys must be distinct")
	}

	return nil
}
