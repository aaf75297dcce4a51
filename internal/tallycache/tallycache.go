package tallycache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Second

// Cache keeps serialized election tallies in redis for a short window so
// the results view does not re-scan votes on every poll. Entirely
// optional: callers fall through to the store on miss or when no redis is
// configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect opens and pings a redis client.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// New wraps a redis client. A non-positive ttl falls back to the default.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func key(electionID string) string { return "tally:election:" + electionID }

// Get loads a cached tally into dst, reporting whether one was present.
func (cache *Cache) Get(ctx context.Context, electionID string, dst any) (bool, error) {
	raw, err := cache.client.Get(ctx, key(electionID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}

// Set stores a tally under the election key with the configured TTL.
func (cache *Cache) Set(ctx context.Context, electionID string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cache.client.Set(ctx, key(electionID), raw, cache.ttl).Err()
}

// Invalidate drops the cached tally after a new ballot lands.
func (cache *Cache) Invalidate(ctx context.Context, electionID string) error {
	return cache.client.Del(ctx, key(electionID)).Err()
}
