package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
)

// PendingSignoffCache caches the joined pending-signoff view as a single
// JSON blob with a TTL.  All operations are best-effort: failures are
// logged and the cache behaves as empty, never surfacing errors to callers.
type PendingSignoffCache struct {
	rdb    *goredis.Client
	key    string
	ttl    time.Duration
	logger logging.Logger
}

// NewPendingSignoffCache builds the cache on an established client.
func NewPendingSignoffCache(client *Client, log logging.Logger) *PendingSignoffCache {
	return &PendingSignoffCache{
		rdb:    client.Raw(),
		key:    client.cfg.KeyPrefix + ":signoffs:pending",
		ttl:    client.cfg.DefaultTTL,
		logger: log,
	}
}

// GetPending returns the cached view, or (nil, false) on miss or error.
func (c *PendingSignoffCache) GetPending(ctx context.Context) ([]*schedule.PendingSignoffView, bool) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if !stderrors.Is(err, goredis.Nil) {
			c.logger.Warn("pending cache read failed", logging.Err(err))
		}
		return nil, false
	}

	var views []*schedule.PendingSignoffView
	if err := json.Unmarshal(raw, &views); err != nil {
		c.logger.Warn("pending cache payload corrupt, dropping", logging.Err(err))
		_ = c.rdb.Del(ctx, c.key).Err()
		return nil, false
	}
	return views, true
}

// SetPending stores the view for the configured TTL.
func (c *PendingSignoffCache) SetPending(ctx context.Context, views []*schedule.PendingSignoffView) {
	raw, err := json.Marshal(views)
	if err != nil {
		c.logger.Warn("pending cache marshal failed", logging.Err(err))
		return
	}
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("pending cache write failed", logging.Err(err))
	}
}

// InvalidatePending drops the cached view after any lifecycle write.
func (c *PendingSignoffCache) InvalidatePending(ctx context.Context) {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn("pending cache invalidation failed", logging.Err(err))
	}
}
