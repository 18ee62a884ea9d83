package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/config"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

// PunctualityCache stores one hash per service and operating day so other
// services can look up how late a departure was without reading the table.
type PunctualityCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewPunctualityCache(rdb *redis.Client, cfg config.RedisConfig) *PunctualityCache {
	return &PunctualityCache{
		rdb:    rdb,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
	}
}

// Key is "<prefix>:<serviceUid>:<date-as-date>". Rows without either part
// have no key and are skipped.
func (c *PunctualityCache) Key(r types.ReconciledTrainData) (string, bool) {
	if r.ServiceUid == nil || *r.ServiceUid == "" || r.DateAsDate == nil {
		return "", false
	}
	return fmt.Sprintf("%s:%s:%s", c.prefix, *r.ServiceUid, r.DateAsDate.Format(types.DateLayout)), true
}

func punctualityFields(r types.ReconciledTrainData) map[string]interface{} {
	derived := r.DerivedValues()

	return map[string]interface{}{
		"train_id":           value(r.TrainIdentity),
		"atoc_code":          value(r.AtocCode),
		"location":           value(r.Description),
		"booked_departure":   value(derived[1]),
		"realtime_departure": value(derived[2]),
		"time_difference":    value(derived[3]),
		"display_as":         value(r.DisplayAs),
	}
}

// Store writes every keyed record in a single pipeline and returns how many
// hashes were written.
func (c *PunctualityCache) Store(ctx context.Context, records []types.ReconciledTrainData) (int, error) {
	stored := 0

	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			key, ok := c.Key(r)
			if !ok {
				continue
			}

			pipe.HSet(ctx, key, punctualityFields(r))
			if c.ttl > 0 {
				// stale days drop out on their own
				pipe.Expire(ctx, key, c.ttl)
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis pipeline: %w", err)
	}

	return stored, nil
}

func (c *PunctualityCache) Close() error {
	return c.rdb.Close()
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
