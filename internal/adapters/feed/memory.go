package feed

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var _ Feed = (*MemoryBroker)(nil)

// MemoryBroker fans changes out to in-process subscribers. A subscriber
// whose buffer is full misses the change.
type MemoryBroker struct {
	buffer int

	mu     sync.RWMutex
	subs   map[int]chan domain.TrackingChange
	nextID int
}

func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = 64
	}
	return &MemoryBroker{
		buffer: buffer,
		subs:   make(map[int]chan domain.TrackingChange),
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, change domain.TrackingChange) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
			log.WithField("habit_id", change.HabitID).Warn("[FEED] subscriber buffer full, change dropped")
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan domain.TrackingChange, error) {
	ch := make(chan domain.TrackingChange, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

func (b *MemoryBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
