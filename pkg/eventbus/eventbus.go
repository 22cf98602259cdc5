// Package eventbus connects modules to NATS through watermill, or to an
// in-process channel when no NATS URL is configured.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus publishes and subscribes watermill messages.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

type natsBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewNATS dials natsURL twice, once per direction. JetStream is disabled:
// events are notifications and consumers rebuild state from storage.
func NewNATS(natsURL, queueGroup string, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: options,
			JetStream:   nats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		logger.Error("Failed to create NATS publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			QueueGroupPrefix: queueGroup,
			SubscribersCount: 1,
			CloseTimeout:     10 * time.Second,
			AckWaitTimeout:   30 * time.Second,
			Unmarshaler:      marshaler,
			NatsOptions:      options,
			JetStream:        nats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		publisher.Close()
		logger.Error("Failed to create NATS subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &natsBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

func (b *natsBus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *natsBus) Close() error {
	pubErr := b.publisher.Close()
	subErr := b.subscriber.Close()
	if pubErr != nil {
		return fmt.Errorf("failed to close NATS publisher: %w", pubErr)
	}
	if subErr != nil {
		return fmt.Errorf("failed to close NATS subscriber: %w", subErr)
	}
	return nil
}

// NewInMemory returns a gochannel bus for single-process deployments and tests.
func NewInMemory(logger *slog.Logger) EventBus {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
}

// NewMessage encodes payload as JSON and carries the correlation id of ctx.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("content_type", "application/json")
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	return msg, nil
}

// Publish encodes and publishes payload on topic.
func Publish(ctx context.Context, pub message.Publisher, topic string, payload any) error {
	msg, err := NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

// Decode unmarshals a JSON message payload.
func Decode[T any](msg *message.Message) (*T, error) {
	payload := new(T)
	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", msg.UUID, err)
	}
	return payload, nil
}
