package audit

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Topic is the logical channel every change is published on.
const Topic = "CHANGES"

// Broker fans change records out to live subscribers.
type Broker interface {
	Publish(ctx context.Context, change ChangeRecord) error
	// Subscribe returns a channel of the changes matching f. The channel is
	// closed when ctx is done.
	Subscribe(ctx context.Context, f Filter) (<-chan ChangeRecord, error)
}

// Filter selects changes on the subscriber side. Nil fields match anything.
type Filter struct {
	Kind             *Kind
	TargetEntityName *string
	TargetID         *string
	TargetColumn     *string
}

// Match reports whether every set field of f equals the field of c.
func (f Filter) Match(c ChangeRecord) bool {
	if f.Kind != nil && *f.Kind != c.Kind {
		return false
	}
	if f.TargetEntityName != nil && *f.TargetEntityName != c.TargetEntityName {
		return false
	}
	if f.TargetID != nil && *f.TargetID != c.TargetID {
		return false
	}
	if f.TargetColumn != nil && (c.TargetColumn == nil || *f.TargetColumn != *c.TargetColumn) {
		return false
	}

	return true
}

// DefaultSubscriberBuffer is the number of changes held for a subscriber
// that has not caught up yet.
const DefaultSubscriberBuffer = 64

type subscription struct {
	filter Filter
	ch     chan ChangeRecord
}

// MemoryBroker delivers changes to subscribers of this process. A subscriber
// whose buffer is full misses the change; publishers never block.
type MemoryBroker struct {
	buffer int

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*subscription
	closed bool
}

func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}

	return &MemoryBroker{
		buffer: buffer,
		subs:   make(map[uint64]*subscription),
	}
}

func (b *MemoryBroker) Publish(_ context.Context, change ChangeRecord) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subs {
		if !sub.filter.Match(change) {
			continue
		}

		select {
		case sub.ch <- change:
		default:
			droppedDeliveries.Inc()
			log.WithFields(log.Fields{
				"subscriber": id,
				"change":     change.ID,
			}).Warn("subscriber is not keeping up, dropping change")
		}
	}

	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, f Filter) (<-chan ChangeRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}

	id := b.nextID
	b.nextID++

	sub := &subscription{filter: f, ch: make(chan ChangeRecord, b.buffer)}
	b.subs[id] = sub
	activeSubscribers.Inc()

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()

	return sub.ch, nil
}

func (b *MemoryBroker) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
		activeSubscribers.Dec()
	}
}

// Close ends every subscription. Publishing after Close is a no-op.
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
		activeSubscribers.Dec()
	}
	b.closed = true
}
