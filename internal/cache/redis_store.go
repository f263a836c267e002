package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-nemesis-backend/internal/grading"
)

// RedisStore keeps cache entries in Redis with a native TTL (SetEx), for
// deployments where several backend instances should share one grading
// cache. Values are JSON-encoded grading results.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisStore constructs a RedisStore. A non-positive ttl falls back to
// DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{Client: client, TTL: ttl}
}

// Name implements Store.
func (s *RedisStore) Name() string { return "redis" }

// redisKey namespaces cache keys within the shared Redis instance.
func redisKey(key string) string { return "grade:" + key }

// Get returns the cached result for key. Redis expires entries itself, so a
// missing key is the only miss case; a value that no longer unmarshals is
// treated as a miss rather than an error.
func (s *RedisStore) Get(ctx context.Context, key string) (*grading.Result, bool, error) {
	raw, err := s.Client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res grading.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, nil
	}
	return &res, true, nil
}

// Put stores the result under key with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, key string, res *grading.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.Client.SetEx(ctx, redisKey(key), raw, s.TTL).Err()
}
