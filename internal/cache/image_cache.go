package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jtk5aw/random-image-site/internal/models"
)

// DailyImageTTL is short on purpose: the record is immutable once written, but
// a fallback selection from the request path should become visible quickly
// across server instances.
const DailyImageTTL = 5 * time.Minute

// ImageCache caches the per-day image record. All methods are nil-safe so the
// server can run without Redis.
type ImageCache struct {
	redis *RedisCache
}

func NewImageCache(redis *RedisCache) *ImageCache {
	return &ImageCache{redis: redis}
}

func dailyImageKey(group, date string) string {
	return fmt.Sprintf("image:%s:%s", group, date)
}

// GetDailyImage retrieves the cached record for a group and date.
func (c *ImageCache) GetDailyImage(group, date string) (*models.ImageRecord, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(dailyImageKey(group, date))
	if err != nil || data == nil {
		return nil, false
	}

	var record models.ImageRecord
	if err := msgpack.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &record, true
}

// SetDailyImage stores the record for a group and date. Failures are ignored;
// the cache is best effort.
func (c *ImageCache) SetDailyImage(record *models.ImageRecord) {
	if c == nil || c.redis == nil || record == nil {
		return
	}
	data, err := msgpack.Marshal(record)
	if err != nil {
		return
	}
	_ = c.redis.Set(dailyImageKey(record.Group, record.Date), data, DailyImageTTL)
}
