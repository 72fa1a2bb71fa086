package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/stockroomhq/stockroom/internal/core/domain"
	"github.com/stockroomhq/stockroom/internal/port"
)

// SnapshotNotifier decouples mutations from snapshot publication. Services
// signal a topic change; a worker pool assembles the full-state snapshot and
// pushes it through the change feed, so the mutation path never blocks on
// the feed or on the reads that build the snapshot.
type SnapshotNotifier struct {
	store   port.ProductStore
	journal port.DistributionJournal
	feed    port.ChangeFeed

	queue chan string
	wg    sync.WaitGroup
	once  sync.Once
}

func NewSnapshotNotifier(store port.ProductStore, journal port.DistributionJournal, feed port.ChangeFeed, queueSize int) *SnapshotNotifier {
	return &SnapshotNotifier{
		store:   store,
		journal: journal,
		feed:    feed,
		queue:   make(chan string, queueSize),
	}
}

// Start launches the publishing workers.
func (n *SnapshotNotifier) Start(workers int) {
	for i := 0; i < workers; i++ {
		n.wg.Add(1)
		go func(id int) {
			defer n.wg.Done()
			n.workerLoop(id)
		}(i)
	}
}

// Notify enqueues a topic for publication without blocking. A dropped signal
// is tolerable when the queue is saturated: snapshots are full state, so any
// queued notify for the same topic supersedes it.
func (n *SnapshotNotifier) Notify(topic string) {
	select {
	case n.queue <- topic:
	default:
		log.Printf("feed: queue full, dropping notify for %s", topic)
	}
}

// Close stops accepting notifies and waits for the workers to drain.
func (n *SnapshotNotifier) Close() {
	n.once.Do(func() { close(n.queue) })
	n.wg.Wait()
}

func (n *SnapshotNotifier) workerLoop(id int) {
	for topic := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		snap, err := n.buildSnapshot(ctx, topic)
		if err != nil {
			log.Printf("feed worker %d: build snapshot for %s: %v", id, topic, err)
			cancel()
			continue
		}

		if err := n.feed.Publish(ctx, snap); err != nil {
			log.Printf("feed worker %d: publish %s: %v", id, topic, err)
		}

		cancel()
	}
}

func (n *SnapshotNotifier) buildSnapshot(ctx context.Context, topic string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Topic: topic, At: time.Now()}

	switch topic {
	case domain.TopicProducts:
		products, err := n.store.List(ctx)
		if err != nil {
			return snap, err
		}
		snap.Products = products
	case domain.TopicDistributions:
		records, err := n.journal.ListAll(ctx)
		if err != nil {
			return snap, err
		}
		snap.Distributions = records
	}

	return snap, nil
}
