package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "stackwise/pkg/platform/strings"
)

const (
	defaultAddr       = ":8080"
	defaultSessionTTL = 12 * time.Hour
	defaultAuditTopic = "stackwise.audit"
	defaultService    = "stackwise"

	// devSessionSecret is only accepted outside production.
	devSessionSecret = "dev-session-secret-change-in-production"
)

// Server captures process level configuration. It is read once at start.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
}

// DatabaseConfig selects the store backend. An empty URL means mock mode.
type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

// MockMode reports whether the in-memory demo backend should be used.
func (d DatabaseConfig) MockMode() bool {
	return d.URL == ""
}

// AuthConfig controls the sign-in gate.
type AuthConfig struct {
	// Enabled switches from email session sign-in to the OIDC provider.
	Enabled          bool
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
	SessionSecret    string
	SessionTTL       time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// TracingConfig controls the OpenTelemetry tracer provider. Spans are only
// exported when Endpoint is set.
type TracingConfig struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

// Load reads an optional .env file, then the environment.
func Load() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := FromEnv()
	if err != nil {
		return Server{}, err
	}
	return cfg, cfg.Validate()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	sessionTTL, err := durationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return Server{}, err
	}
	autoMigrate, err := boolEnv("AUTO_MIGRATE", true)
	if err != nil {
		return Server{}, err
	}

	sampleRatio, err := floatEnv("TRACE_SAMPLE_RATIO", 1)
	if err != nil {
		return Server{}, err
	}

	secret := os.Getenv("SESSION_SECRET")
	env := stringEnv("ENVIRONMENT", "development")
	if secret == "" && !isProduction(env) {
		secret = devSessionSecret
	}

	return Server{
		Addr:        stringEnv("STACKWISE_ADDR", defaultAddr),
		Environment: env,
		LogLevel:    stringEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:         os.Getenv("DATABASE_URL"),
			AutoMigrate: autoMigrate,
		},
		Auth: AuthConfig{
			Enabled:          os.Getenv("AUTH_ENABLED") == "true",
			OIDCIssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			OIDCClientID:     os.Getenv("OIDC_CLIENT_ID"),
			OIDCClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			OIDCRedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			SessionSecret:    secret,
			SessionTTL:       sessionTTL,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: stringEnv("AUDIT_TOPIC", defaultAuditTopic),
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: stringEnv("OTEL_SERVICE_NAME", defaultService),
			SampleRatio: sampleRatio,
		},
	}, nil
}

// Validate checks cross-field requirements.
func (s Server) Validate() error {
	var errs []error
	if s.Auth.Enabled {
		for name, v := range map[string]string{
			"OIDC_ISSUER_URL":    s.Auth.OIDCIssuerURL,
			"OIDC_CLIENT_ID":     s.Auth.OIDCClientID,
			"OIDC_CLIENT_SECRET": s.Auth.OIDCClientSecret,
			"OIDC_REDIRECT_URL":  s.Auth.OIDCRedirectURL,
		} {
			if v == "" {
				errs = append(errs, fmt.Errorf("%s is required when AUTH_ENABLED=true", name))
			}
		}
	}
	if s.IsProduction() && (s.Auth.SessionSecret == "" || s.Auth.SessionSecret == devSessionSecret) {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	if s.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if s.Tracing.SampleRatio < 0 || s.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("TRACE_SAMPLE_RATIO must be between 0 and 1"))
	}
	return errors.Join(errs...)
}

func (s Server) IsProduction() bool {
	return isProduction(s.Environment)
}

func isProduction(env string) bool {
	return strings.EqualFold(env, "production")
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
