package deliveryqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "webhook_delivery_queue", QueueKey)
	assert.Equal(t, "webhook_delivery_stats", StatsKey)
}

func TestNotifyEmptyIsNoop(t *testing.T) {
	q := &Queue{}
	assert.NoError(t, q.Notify(context.Background(), nil))
}

func TestNotifyPushesInArrivalOrder(t *testing.T) {
	client := newTestRedis(t)
	q := NewQueue(client)
	ctx := context.Background()

	require.NoError(t, q.Notify(ctx, []string{"d1", "d2"}))
	require.NoError(t, q.Notify(ctx, []string{"d3"}))

	// LPUSH puts the newest id at the head; the worker pops from the tail.
	ids, err := client.LRange(ctx, QueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"d3", "d2", "d1"}, ids)

	enqueued, err := client.HGet(ctx, StatsKey, "enqueued").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), enqueued)
}
