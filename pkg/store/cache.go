package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecotrace/verity/pkg/analysis"
)

// ResultCache stores analysis results in Redis keyed by content digest, so
// repeated submissions of identical bytes skip the full ensemble run.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache connects to Redis. An empty address yields a disabled
// cache whose lookups always miss.
func NewResultCache(addr string, ttl time.Duration) *ResultCache {
	if addr == "" {
		return &ResultCache{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Enabled reports whether a Redis backend is configured.
func (c *ResultCache) Enabled() bool { return c.client != nil }

// Key derives the cache key for a request: the content type plus the
// SHA-256 digest of the content bytes.
func Key(req *analysis.Request) string {
	h := sha256.New()
	h.Write([]byte(req.ContentType))
	h.Write([]byte{0})
	if req.ContentType == analysis.ContentImage {
		h.Write(req.Payload)
	} else {
		h.Write([]byte(req.Content))
	}
	return "verity:result:" + hex.EncodeToString(h.Sum(nil))
}

// Get fetches a cached result. Any backend error is treated as a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*analysis.Result, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var result analysis.Result
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("[WARN] Dropping unreadable cache entry %s: %v", key, err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return &result, true
}

// Set stores a result under the key. Failures are logged, never fatal.
func (c *ResultCache) Set(ctx context.Context, key string, result *analysis.Result) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[WARN] Cache write failed: %v", err)
	}
}

// Close releases the Redis connection.
func (c *ResultCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
