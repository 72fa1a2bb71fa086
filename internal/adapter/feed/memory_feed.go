package feed

import (
	"context"
	"sync"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

// MemoryFeed is an in-process change feed for tests and dev mode.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[string][]chan domain.Snapshot
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string][]chan domain.Snapshot)}
}

func (f *MemoryFeed) Publish(ctx context.Context, snap domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs[snap.Topic] {
		select {
		case ch <- snap:
		default:
			// Slow subscriber; the next publish carries full state anyway.
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, topic string) (<-chan domain.Snapshot, func(), error) {
	ch := make(chan domain.Snapshot, 16)

	f.mu.Lock()
	f.subs[topic] = append(f.subs[topic], ch)
	f.mu.Unlock()

	stop := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[topic]
		for i, sub := range subs {
			if sub == ch {
				f.subs[topic] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, stop, nil
}
