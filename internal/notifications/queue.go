package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PushQueueKey is the Redis list the api pushes onto and the worker
// drains.
const PushQueueKey = "notifications:push"

// Queue enqueues push messages for the delivery worker. Handlers
// treat enqueue failures as non-fatal: the booking write has already
// committed (fire-and-forget posture).
type Queue struct {
	redisdb *redis.Client
}

func NewQueue(redisdb *redis.Client) *Queue {
	return &Queue{redisdb: redisdb}
}

func (q *Queue) Enqueue(ctx context.Context, msg PushMessage) error {
	raw, err := json.Marshal(msg)

	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	return q.redisdb.LPush(ctx, PushQueueKey, raw).Err()
}
