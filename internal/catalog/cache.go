package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	volumeKeyPrefix = "catalog:volume:"
	searchKeyPrefix = "catalog:search:"
)

// CachedLookup serves repeated lookups and searches from Redis.
// Only successful answers are cached; Redis failures fall through to the wrapped Lookup.
type CachedLookup struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Lookup = (*CachedLookup)(nil)

// NewCachedLookup wraps next. A nil client turns the cache into a pass-through.
func NewCachedLookup(next Lookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLookup{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *CachedLookup) LookupByID(ctx context.Context, id string) (*Volume, error) {
	if c.client == nil {
		return c.next.LookupByID(ctx, id)
	}

	key := volumeKeyPrefix + id
	if raw, ok := c.get(ctx, key); ok {
		var vol Volume
		if err := json.Unmarshal(raw, &vol); err == nil {
			return &vol, nil
		}
		c.logger.Warn("catalog_cache_corrupt", "key", key)
	}

	vol, err := c.next.LookupByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(vol); err == nil {
		c.set(ctx, key, raw)
	}
	return vol, nil
}

func (c *CachedLookup) Search(ctx context.Context, query string) (json.RawMessage, error) {
	if c.client == nil {
		return c.next.Search(ctx, query)
	}

	key := searchKey(query)
	if raw, ok := c.get(ctx, key); ok {
		return json.RawMessage(raw), nil
	}

	raw, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, raw)
	return raw, nil
}

func (c *CachedLookup) get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog_cache_get_failed", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *CachedLookup) set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog_cache_set_failed", "key", key, "error", err)
	}
}

// searchKey normalises the query and hashes it to keep keys bounded.
func searchKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}
