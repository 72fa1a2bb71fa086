package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

// RedisFeed carries full-state snapshots over Redis pub/sub channels, one
// channel per topic. Subscribers that join late simply wait for the next
// mutation; every publish is a complete snapshot, not a delta.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) Publish(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := f.client.Publish(ctx, snap.Topic, payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, topic string) (<-chan domain.Snapshot, func(), error) {
	pubsub := f.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan domain.Snapshot)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var snap domain.Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { pubsub.Close() }
	return out, stop, nil
}
