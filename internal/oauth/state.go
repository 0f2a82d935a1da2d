package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// StateStore keeps issued OAuth states until the callback consumes them.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume reports whether the state was issued and not yet expired,
	// and removes it.
	Consume(ctx context.Context, state string) (bool, error)
}

// MemoryStateStore is the single-instance state store.
type MemoryStateStore struct {
	cache *ttlcache.Cache[string, struct{}]
}

// NewMemoryStateStore creates an empty in-memory store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		cache: ttlcache.New(ttlcache.WithDisableTouchOnHit[string, struct{}]()),
	}
}

// Save records the state with its expiry and drops expired ones.
func (s *MemoryStateStore) Save(_ context.Context, state string, ttl time.Duration) error {
	s.cache.DeleteExpired()
	s.cache.Set(state, struct{}{}, ttl)
	return nil
}

// Consume removes the state and reports whether it was still valid.
func (s *MemoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	item, ok := s.cache.GetAndDelete(state)
	if !ok {
		return false, nil
	}
	return !item.IsExpired(), nil
}

// RedisStateStore shares states between instances.
type RedisStateStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStateStore creates a store keyed under "oauth:state:".
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client, prefix: "oauth:state:"}
}

// Save stores the state with ttl as its expiry.
func (s *RedisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+state, "1", ttl).Err()
}

// Consume atomically reads and deletes the state.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	err := s.client.GetDel(ctx, s.prefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
