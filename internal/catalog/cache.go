// internal/catalog/cache.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/common/metrics"
	"shoe-recommender/internal/models"
)

// Cache stores normalized batches in Redis so repeated queries against the
// same partner/category reuse one normalization pass. Every cache failure is
// soft: a miss is returned and the caller falls back to the repository.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func cacheKey(partnerID int, category string) string {
	return fmt.Sprintf("catalog:normalized:%d:%s", partnerID, category)
}

// GetNormalized returns the cached normalized batch, or ok=false on a miss
// or any cache failure.
func (c *Cache) GetNormalized(ctx context.Context, partnerID int, category string) ([]models.NormalizedProduct, bool) {
	val, err := c.client.Get(ctx, cacheKey(partnerID, category)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	var products []models.NormalizedProduct
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		c.logger.Warn("cache entry unmarshal failed", map[string]interface{}{"error": err.Error()})
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
	return products, true
}

// SetNormalized stores a normalized batch. Failures are logged and absorbed.
func (c *Cache) SetNormalized(ctx context.Context, partnerID int, category string, products []models.NormalizedProduct) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("cache entry marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, cacheKey(partnerID, category), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
