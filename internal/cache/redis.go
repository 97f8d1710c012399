package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection
func Init(addr, password string, db int) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client, nil when the cache is unavailable
func GetClient() *redis.Client {
	return client
}

// Close releases the connection pool
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// ExportCache keeps finished exports for a while so repeated downloads of an
// unchanged invoice skip rasterization. Keys are content fingerprints.
type ExportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewExportCache uses the shared client; a nil client makes every lookup miss
func NewExportCache(ttl time.Duration) *ExportCache {
	return &ExportCache{rdb: client, ttl: ttl}
}

// Get returns cached export bytes if available
func (c *ExportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set caches export bytes for the configured TTL
func (c *ExportCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, key, data, c.ttl)
}
