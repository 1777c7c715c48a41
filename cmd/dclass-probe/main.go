// Command dclass-probe exercises a D-Class API deployment end to end: login,
// profile fetch, token refresh, and logout, reporting metrics at the end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	dclass "github.com/dclass-hq/dclass-go"
)

type probeConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
	Redis    string        `yaml:"redis"`
}

func loadConfig(path string) (probeConfig, error) {
	cfg := probeConfig{
		Timeout: 10 * time.Second,
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		baseURL    = flag.String("base-url", "", "API base URL")
		email      = flag.String("email", "", "login email")
		password   = flag.String("password", "", "login password")
		redisAddr  = flag.String("redis", "", "optional redis address for session storage")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}

	// Flags override the file.
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *email != "" {
		cfg.Email = *email
	}
	if *password != "" {
		cfg.Password = *password
	}
	if *redisAddr != "" {
		cfg.Redis = *redisAddr
	}

	if cfg.BaseURL == "" || cfg.Email == "" || cfg.Password == "" {
		logger.Fatal().Msg("base-url, email, and password are required")
	}

	builder := dclass.New().
		WithBaseURL(cfg.BaseURL).
		WithLogger(logger).
		WithAuditSink(dclass.NewJSONWriterSink(os.Stdout)).
		WithLatencyHistograms(true)

	if cfg.Redis != "" {
		builder = builder.WithRedis(redis.NewClient(&redis.Options{Addr: cfg.Redis}))
	}

	client, err := builder.Build()
	if err != nil {
		logger.Fatal().Err(err).Msg("client build failed")
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	sess, err := client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		logger.Fatal().Err(err).Msg("login failed")
	}
	logger.Info().
		Str("user_id", sess.User.ID).
		Str("role", string(sess.User.Role)).
		Time("expires_at", sess.ExpiresAt).
		Msg("login ok")

	user, err := client.Me(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("profile fetch failed")
	}
	logger.Info().Str("email", user.Email).Msg("profile ok")

	if _, err := client.Refresh(ctx); err != nil {
		logger.Fatal().Err(err).Msg("refresh failed")
	}
	logger.Info().Msg("refresh ok")

	if err := client.Logout(ctx); err != nil {
		logger.Fatal().Err(err).Msg("logout failed")
	}
	logger.Info().Msg("logout ok")

	snapshot := client.MetricsSnapshot()
	logger.Info().
		Uint64("login_success", snapshot.Counters[dclass.MetricLoginSuccess]).
		Uint64("refresh_success", snapshot.Counters[dclass.MetricRefreshSuccess]).
		Uint64("retries", snapshot.Counters[dclass.MetricRequestRetried]).
		Uint64("audit_dropped", client.AuditDropped()).
		Msg("probe complete")
}
