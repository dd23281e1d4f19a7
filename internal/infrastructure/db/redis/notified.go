package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultNotifiedTTL = 24 * time.Hour

// NotifiedSet remembers reminded appointment ids across poller restarts.
// Key format: reminder:notified:<appointment_id>
type NotifiedSet struct {
	client *redis.Client
}

func NewNotifiedSet(client *redis.Client) *NotifiedSet {
	return &NotifiedSet{client: client}
}

// MarkIfNew sets the key only when absent and reports whether it did.
func (n *NotifiedSet) MarkIfNew(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = defaultNotifiedTTL
	}
	ok, err := n.client.SetNX(ctx, n.key(id), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("notified set: %w", err)
	}
	return ok, nil
}

func (n *NotifiedSet) key(id string) string {
	return fmt.Sprintf("reminder:notified:%s", id)
}
