package port

import (
	"context"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

// ChangeFeed pushes full-state snapshots to subscribers so consumers can
// reflect store totals without polling.
type ChangeFeed interface {
	Publish(ctx context.Context, snap domain.Snapshot) error

	// Subscribe returns a channel of snapshots for one topic and a stop
	// function that releases the subscription.
	Subscribe(ctx context.Context, topic string) (<-chan domain.Snapshot, func(), error)
}

// Notifier is the engine-facing side of the feed: a non-blocking signal that
// a topic's state changed. Implementations assemble and publish the snapshot
// off the mutation path.
type Notifier interface {
	Notify(topic string)
}
