package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-engine/internal/domain/product"
	"loan-engine/internal/infrastructure/monitoring"

	"github.com/redis/go-redis/v9"
)

const defaultProductTTL = 10 * time.Minute

// ProductCache is a cache-aside decorator for the active-product lookup used
// at loan origination. Writes go straight to the wrapped repository and drop
// the cached copy.
type ProductCache struct {
	product.Repository
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ product.Repository = (*ProductCache)(nil)

func NewProductCache(repo product.Repository, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}
	return &ProductCache{
		Repository: repo,
		client:     client,
		ttl:        ttl,
		logger:     logger.With("component", "ProductCache"),
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("loan-product:%d", id)
}

func (c *ProductCache) FindActiveByID(ctx context.Context, id int64) (*product.Product, error) {
	key := productKey(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p product.Product
		if err := json.Unmarshal(raw, &p); err == nil {
			monitoring.RecordCacheLookup("hit")
			return &p, nil
		}
		c.logger.WarnContext(ctx, "Discarding undecodable cached product", "key", key)
		monitoring.RecordCacheLookup("error")
	case errors.Is(err, redis.Nil):
		monitoring.RecordCacheLookup("miss")
	default:
		c.logger.WarnContext(ctx, "Redis GET failed, falling back to database", "key", key, "error", err)
		monitoring.RecordCacheLookup("error")
	}

	p, err := c.Repository.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to encode product for cache", "productID", id, "error", err)
		return p, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis SET failed", "key", key, "error", err)
	}
	return p, nil
}

func (c *ProductCache) Update(ctx context.Context, p *product.Product) error {
	if err := c.Repository.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *ProductCache) SetActive(ctx context.Context, id int64, active bool) error {
	if err := c.Repository.SetActive(ctx, id, active); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *ProductCache) invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.WarnContext(ctx, "Redis DEL failed; entry expires with TTL", "productID", id, "error", err)
	}
}
