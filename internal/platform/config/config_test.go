package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"STACKWISE_ADDR", "DATABASE_URL", "AUTO_MIGRATE", "AUTH_ENABLED", "SESSION_SECRET",
		"SESSION_TTL", "REDIS_URL", "KAFKA_BROKERS", "AUDIT_TOPIC", "LOG_LEVEL", "ENVIRONMENT",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "TRACE_SAMPLE_RATIO"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.Database.MockMode())
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, devSessionSecret, cfg.Auth.SessionSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "stackwise.audit", cfg.Kafka.AuditTopic)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, "stackwise", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STACKWISE_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/stackwise")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.Database.MockMode())
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://collector:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "SESSION_TTL")
	})
	t.Run("bool", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "")
		t.Setenv("AUTO_MIGRATE", "maybe")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "AUTO_MIGRATE")
	})
	t.Run("float", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "")
		t.Setenv("AUTO_MIGRATE", "")
		t.Setenv("TRACE_SAMPLE_RATIO", "half")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "TRACE_SAMPLE_RATIO")
	})
}

func TestValidate(t *testing.T) {
	base := Server{Environment: "development", Auth: AuthConfig{SessionSecret: "s", SessionTTL: time.Hour}}

	t.Run("oidc requires all four variables", func(t *testing.T) {
		cfg := base
		cfg.Auth.Enabled = true
		cfg.Auth.OIDCIssuerURL = "https://issuer.example.com"
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorContains(t, err, "OIDC_CLIENT_ID")
		assert.ErrorContains(t, err, "OIDC_CLIENT_SECRET")
		assert.ErrorContains(t, err, "OIDC_REDIRECT_URL")
		assert.NotContains(t, err.Error(), "OIDC_ISSUER_URL")
	})

	t.Run("oidc complete", func(t *testing.T) {
		cfg := base
		cfg.Auth = AuthConfig{
			Enabled: true, OIDCIssuerURL: "i", OIDCClientID: "c", OIDCClientSecret: "s", OIDCRedirectURL: "r",
			SessionSecret: "s", SessionTTL: time.Hour,
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production requires a real session secret", func(t *testing.T) {
		cfg := base
		cfg.Environment = "production"
		cfg.Auth.SessionSecret = devSessionSecret
		assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		cfg := base
		cfg.Tracing.SampleRatio = 1.5
		assert.ErrorContains(t, cfg.Validate(), "TRACE_SAMPLE_RATIO")
	})
}
