package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const notificationsKey = "notifications:outbox"

// NotificationQueue implements ports.NotificationQueue over a Redis list.
// A separate delivery service drains the list; the settlement path only
// publishes and never waits on delivery.
type NotificationQueue struct {
	client *goredis.Client
}

// NewNotificationQueue creates a Redis-backed notification queue.
func NewNotificationQueue(client *goredis.Client) *NotificationQueue {
	return &NotificationQueue{client: client}
}

// Enqueue pushes one notification payload onto the outbox.
func (q *NotificationQueue) Enqueue(ctx context.Context, payload []byte) error {
	if err := q.client.RPush(ctx, notificationsKey, payload).Err(); err != nil {
		return fmt.Errorf("redis notification enqueue: %w", err)
	}
	return nil
}
