package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mapskomalchhabra3330-sudo/Verbal-Stock-Inventory/internal/models"
)

// Options configures the cache connection
type Options struct {
	Addrs       []string
	Password    string
	ClusterMode bool
	TTL         time.Duration
	KeyPrefix   string
}

// CacheClient caches items by id with a secondary folded-name index
type CacheClient struct {
	client    redis.UniversalClient // single node or cluster
	ttl       time.Duration
	keyPrefix string
}

// cachedItem carries the version that the item's JSON form omits
type cachedItem struct {
	models.InventoryItem
	Version int64 `json:"version"`
}

// NewCacheClient creates a new Redis cache client with cluster support
func NewCacheClient(opts Options) *CacheClient {
	var client redis.UniversalClient

	if opts.ClusterMode {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:          opts.Addrs,
			Password:       opts.Password,
			MaxRetries:     3,
			PoolSize:       50,
			MinIdleConns:   5,
			PoolTimeout:    30 * time.Second,
			MaxRedirects:   8,
			RouteByLatency: true,
		})
	} else {
		addr := "localhost:6379"
		if len(opts.Addrs) > 0 {
			addr = opts.Addrs[0]
		}
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: opts.Password,
			PoolSize: 10,
		})
	}

	return NewCacheClientWith(client, opts.TTL, opts.KeyPrefix)
}

// NewCacheClientWith wraps an existing client
func NewCacheClientWith(client redis.UniversalClient, ttl time.Duration, keyPrefix string) *CacheClient {
	return &CacheClient{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// GetItem retrieves an item from cache; nil on a miss
func (c *CacheClient) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	val, err := c.client.Get(ctx, c.itemKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		log.Error().Err(err).Str("item_id", id).Msg("Failed to get item from cache")
		return nil, fmt.Errorf("failed to get item from cache: %w", err)
	}

	var entry cachedItem
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		log.Error().Err(err).Str("item_id", id).Msg("Failed to unmarshal cached item")
		return nil, fmt.Errorf("failed to unmarshal cached item: %w", err)
	}

	item := entry.InventoryItem
	item.Version = entry.Version
	log.Debug().Str("item_id", id).Msg("Cache hit for item")
	return &item, nil
}

// GetItemIDByName resolves a folded name to an item id; empty on a miss
func (c *CacheClient) GetItemIDByName(ctx context.Context, name string) (string, error) {
	id, err := c.client.Get(ctx, c.nameKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		log.Error().Err(err).Str("name", name).Msg("Failed to get name index from cache")
		return "", fmt.Errorf("failed to get name index from cache: %w", err)
	}
	return id, nil
}

// SetItem stores an item and its name index
func (c *CacheClient) SetItem(ctx context.Context, item *models.InventoryItem) error {
	data, err := json.Marshal(cachedItem{InventoryItem: *item, Version: item.Version})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.itemKey(item.ID), data, c.ttl)
		pipe.Set(ctx, c.nameKey(item.Name), item.ID, c.ttl)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("item_id", item.ID).Msg("Failed to set item in cache")
		return fmt.Errorf("failed to set item in cache: %w", err)
	}

	log.Debug().Str("item_id", item.ID).Msg("Cached item")
	return nil
}

// DeleteItem removes an item and, when name is set, its name index
func (c *CacheClient) DeleteItem(ctx context.Context, id, name string) error {
	keys := []string{c.itemKey(id)}
	if models.FoldName(name) != "" {
		keys = append(keys, c.nameKey(name))
	}

	// keys may live on different cluster slots, so delete one at a time
	for _, key := range keys {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			log.Error().Err(err).Str("item_id", id).Msg("Failed to delete item from cache")
			return fmt.Errorf("failed to delete item from cache: %w", err)
		}
	}

	log.Debug().Str("item_id", id).Msg("Deleted item from cache")
	return nil
}

// HandleChange invalidates the cache entries touched by a change event
func (c *CacheClient) HandleChange(ctx context.Context, change *models.InventoryChange) error {
	return c.DeleteItem(ctx, change.ItemID, change.ItemName)
}

// Ping checks if Redis is available
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.client.Close()
}

func (c *CacheClient) itemKey(id string) string {
	return fmt.Sprintf("%sitem:%s", c.keyPrefix, id)
}

func (c *CacheClient) nameKey(name string) string {
	return fmt.Sprintf("%sname:%s", c.keyPrefix, models.FoldName(name))
}
