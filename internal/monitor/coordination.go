package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"jobwatch/monitor-service/internal/model"
)

const (
	cycleLockKey = "jobwatch:cycle-lock"
	// cycleLockTTL bounds how long a crashed process can hold the lock.
	cycleLockTTL = 15 * time.Minute

	cycleEventChannel = "EVENT_CYCLE_COMPLETE"
)

// RedisCoordination implements Locker and EventPublisher on a shared
// Redis instance, so duplicate deployments never run cycles
// concurrently and downstream consumers can subscribe to cycle events.
type RedisCoordination struct {
	rdb *redis.Client
}

// NewRedisCoordination wraps a connected Redis client.
func NewRedisCoordination(rdb *redis.Client) *RedisCoordination {
	return &RedisCoordination{rdb: rdb}
}

// Acquire takes the cycle lock. Returns false when another cycle holds
// it, in which case the caller skips its run.
func (c *RedisCoordination) Acquire(ctx context.Context) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, cycleLockKey, time.Now().UTC().Format(time.RFC3339), cycleLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire cycle lock: %w", err)
	}
	return ok, nil
}

// Release frees the cycle lock. Failure only means the lock expires by
// TTL instead.
func (c *RedisCoordination) Release(ctx context.Context) {
	if err := c.rdb.Del(ctx, cycleLockKey).Err(); err != nil {
		slog.Warn("release cycle lock failed", "err", err)
	}
}

type cycleEvent struct {
	Type       string    `json:"type"`
	TotalNew   int       `json:"totalNew"`
	TotalSent  int       `json:"totalSent"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// PublishCycle announces a completed cycle on the event channel.
func (c *RedisCoordination) PublishCycle(ctx context.Context, result model.CycleResult) error {
	payload, err := json.Marshal(cycleEvent{
		Type:       cycleEventChannel,
		TotalNew:   result.TotalNew,
		TotalSent:  result.TotalSent,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	})
	if err != nil {
		return err
	}
	if err := c.rdb.Publish(ctx, cycleEventChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish cycle event: %w", err)
	}
	return nil
}
