package audit

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/redis.v5"
)

// RedisBroker publishes changes on a redis channel so that every instance
// sharing the redis server delivers them to its own subscribers. Received
// changes are fanned out locally through a MemoryBroker.
type RedisBroker struct {
	client *redis.Client
	local  *MemoryBroker
}

// NewRedisBroker connects to the redis server at url, e.g.
// redis://localhost:6379/0.
func NewRedisBroker(url string, buffer int) (*RedisBroker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &RedisBroker{
		client: redis.NewClient(opts),
		local:  NewMemoryBroker(buffer),
	}, nil
}

func (b *RedisBroker) Publish(_ context.Context, change ChangeRecord) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}

	return b.client.Publish(Topic, string(payload)).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, f Filter) (<-chan ChangeRecord, error) {
	return b.local.Subscribe(ctx, f)
}

// Run relays the redis channel to local subscribers until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub, err := b.client.Subscribe(Topic)
	if err != nil {
		return fmt.Errorf("cannot subscribe to %s: %w", Topic, err)
	}

	go func() {
		<-ctx.Done()
		_ = pubsub.Close()
	}()

	for {
		msg, err := pubsub.ReceiveMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("cannot receive from %s: %w", Topic, err)
		}

		b.deliver(ctx, msg.Payload)
	}
}

func (b *RedisBroker) deliver(ctx context.Context, payload string) {
	var change ChangeRecord
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		log.WithError(err).Warn("discarding malformed change payload")
		return
	}

	_ = b.local.Publish(ctx, change)
}

// Close ends local subscriptions and the redis connection.
func (b *RedisBroker) Close() error {
	b.local.Close()
	return b.client.Close()
}
