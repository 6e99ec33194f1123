package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Redis key prefix for signed-out session ids
const revokedKeyPrefix = "stackwise:revoked:jti:"

// RedisStore keeps signed-out session ids in Redis so every instance sees
// them. Keys expire with the session they revoke.
type RedisStore struct {
	client     *redis.Client
	isRevokedS prometheus.Histogram
}

// RedisOption configures a RedisStore instance.
type RedisOption func(*RedisStore)

// WithRegisterer registers the lookup latency histogram on reg.
func WithRegisterer(reg prometheus.Registerer) RedisOption {
	return func(s *RedisStore) {
		s.isRevokedS = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "stackwise_session_revocation_check_duration_seconds",
			Help:    "Latency of session revocation checks",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		})
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Revoke marks jti as signed out for ttl using SET with expiry.
func (s *RedisStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	// Key existence is the marker
	return s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked returns false when the key is absent or has expired.
func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.isRevokedS != nil {
		start := time.Now()
		defer func() { s.isRevokedS.Observe(time.Since(start).Seconds()) }()
	}
	if jti == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
