// Package deliveryqueue signals the external webhook delivery worker that new
// rows are waiting in webhook_deliveries. The table stays the source of truth;
// the Redis list only carries ids so the worker does not have to poll.
package deliveryqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/merchantgate/internal/pkg/cache"
)

const (
	// Redis keys
	QueueKey = "webhook_delivery_queue"
	StatsKey = "webhook_delivery_stats"

	statEnqueued = "enqueued"
)

type Queue struct {
	client *redis.Client
}

// NewQueue wraps client, falling back to the shared cache client when nil.
func NewQueue(client *redis.Client) *Queue {
	if client == nil {
		client = cache.GetClient()
	}
	return &Queue{client: client}
}

// Notify pushes delivery ids and bumps the enqueued counter in one pipeline.
func (q *Queue) Notify(ctx context.Context, deliveryIDs []string) error {
	if len(deliveryIDs) == 0 {
		return nil
	}
	values := make([]interface{}, len(deliveryIDs))
	for i, id := range deliveryIDs {
		values[i] = id
	}

	pipe := q.client.Pipeline()
	pipe.LPush(ctx, QueueKey, values...)
	pipe.HIncrBy(ctx, StatsKey, statEnqueued, int64(len(deliveryIDs)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to signal deliveries: %w", err)
	}

	log.Debugf("[DeliveryQueue] Signalled %d deliveries", len(deliveryIDs))
	return nil
}
