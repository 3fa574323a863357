package modelstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/symptom-intake-server/internal/domain"
)

// RedisStore keeps model blobs in Redis so multiple instances can share one
// trained model. All operations go through a circuit breaker: persistence
// failures are expected to be survivable, and a flapping Redis should fail
// fast instead of stalling maintenance operations.
type RedisStore struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker
	keyPrefix string
	ttl       time.Duration
}

// RedisStoreConfig configures the Redis-backed blob store.
type RedisStoreConfig struct {
	URL       string
	KeyPrefix string
	// TTL of zero keeps blobs until overwritten.
	TTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisStoreConfig, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "model-store-redis",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Model store circuit breaker state changed")
		},
	})

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "symptom-intake:model:"
	}

	return &RedisStore{
		client:    client,
		breaker:   breaker,
		keyPrefix: prefix,
		ttl:       cfg.TTL,
	}, nil
}

// Store writes the blob under the prefixed key.
func (s *RedisStore) Store(ctx context.Context, key string, data []byte) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, s.keyPrefix+key, data, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("storing blob in redis: %w", err)
	}
	return nil
}

// Retrieve reads a blob; a missing key maps to ErrBlobNotFound.
func (s *RedisStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlobNotFound, key)
		}
		return data, err
	})
	if err != nil {
		if errors.Is(err, domain.ErrBlobNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("retrieving blob from redis: %w", err)
	}
	return result.([]byte), nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
