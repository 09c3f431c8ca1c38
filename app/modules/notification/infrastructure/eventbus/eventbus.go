package notificationbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// queueGroup keeps one webhook post per event when several API instances
// subscribe to the same subject.
const queueGroup = "flag-hunt-notifications"

// EventBus pairs the publisher and subscriber used for first-solve events.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	logger     *slog.Logger
}

// NewEventBus connects to core NATS when natsURL is set. Without a URL the
// events stay in process on a gochannel pub/sub.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (*EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if natsURL == "" {
		logger.InfoContext(ctx, "NATS URL not configured, using in-process event bus")
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &EventBus{Publisher: ch, Subscriber: ch, logger: logger}, nil
	}

	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.Name("flag-hunt"),
	}

	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisher(nats.PublisherConfig{
		URL:               natsURL,
		NatsOptions:       natsOptions,
		Marshaler:         marshaler,
		JetStream:         jsConfig,
		SubjectCalculator: nats.DefaultSubjectCalculator,
	}, wmLogger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create NATS publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:               natsURL,
		QueueGroupPrefix:  queueGroup,
		SubscribersCount:  1,
		CloseTimeout:      5 * time.Second,
		AckWaitTimeout:    30 * time.Second,
		NatsOptions:       natsOptions,
		Unmarshaler:       marshaler,
		JetStream:         jsConfig,
		SubjectCalculator: nats.DefaultSubjectCalculator,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		logger.ErrorContext(ctx, "Failed to create NATS subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected to NATS", slog.String("url", natsURL))
	return &EventBus{Publisher: publisher, Subscriber: subscriber, logger: logger}, nil
}

// Close shuts down the subscriber before the publisher.
func (eb *EventBus) Close() error {
	var firstErr error
	if err := eb.Subscriber.Close(); err != nil {
		eb.logger.Error("Failed to close subscriber", slog.Any("error", err))
		firstErr = err
	}
	// gochannel is both ends; closing twice is a no-op there.
	if err := eb.Publisher.Close(); err != nil && firstErr == nil {
		eb.logger.Error("Failed to close publisher", slog.Any("error", err))
		firstErr = err
	}
	return firstErr
}
