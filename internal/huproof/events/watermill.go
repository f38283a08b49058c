package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/redis/go-redis/v9"
)

// WatermillPublisher publishes each event on a topic named after its type.
type WatermillPublisher struct {
	publisher message.Publisher
	prefix    string
}

var _ Publisher = (*WatermillPublisher)(nil)

// NewWatermillPublisher wraps any watermill publisher. Topics are
// prefix+event type; an empty prefix uses the bare type.
func NewWatermillPublisher(publisher message.Publisher, prefix string) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, prefix: prefix}
}

// NewRedisStreamPublisher publishes to Redis streams through client.
func NewRedisStreamPublisher(client redis.UniversalClient, prefix string) (*WatermillPublisher, error) {
	pub, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, fmt.Errorf("redisstream publisher: %w", err)
	}
	return NewWatermillPublisher(pub, prefix), nil
}

// Topic returns the topic an event of type t is published on.
func (p *WatermillPublisher) Topic(t domain.EventType) string {
	return p.prefix + string(t)
}

func (p *WatermillPublisher) Publish(ctx context.Context, e domain.Event) error {
	payload, err := marshal(e)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewULID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", string(e.Type))

	if err := p.publisher.Publish(p.Topic(e.Type), msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}
