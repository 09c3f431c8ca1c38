package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	notificationservice "github.com/Black-And-White-Club/flag-hunt/app/modules/notification/application"
	"github.com/Black-And-White-Club/flag-hunt/app/modules/notification/infrastructure/discord"
	notificationbus "github.com/Black-And-White-Club/flag-hunt/app/modules/notification/infrastructure/eventbus"
	notificationrouter "github.com/Black-And-White-Club/flag-hunt/app/modules/notification/infrastructure/router"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module owns the event bus, the first-solve publisher and, when a webhook
// is configured, the router that delivers to Discord.
type Module struct {
	eventBus   *notificationbus.EventBus
	publisher  *notificationservice.Publisher
	router     *notificationrouter.NotificationRouter
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

func NewModule(ctx context.Context, cfg *config.Config, obs observability.Observability) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing notification module")

	bus, err := notificationbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	m := &Module{
		eventBus:  bus,
		publisher: notificationservice.NewPublisher(bus.Publisher, logger, obs.Metrics, obs.Tracer),
		logger:    logger,
	}

	nc := cfg.Notifications
	if !nc.Enabled || nc.WebhookURL == "" {
		logger.InfoContext(ctx, "Discord notifications disabled")
		return m, nil
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to create notification router: %w", err)
	}
	m.router = notificationrouter.NewNotificationRouter(logger, wmRouter, bus.Subscriber, obs.Metrics, obs.Tracer, obs.Registry, nc.DeliverTimeout)
	if err := m.router.Configure(ctx, discord.NewWebhook(nc.WebhookURL, nc.DeliverTimeout, nc.RatePerMinute)); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to configure notification router: %w", err)
	}
	return m, nil
}

// Run blocks until ctx is cancelled, running the delivery router if one is configured.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if m.router == nil {
		<-ctx.Done()
		return
	}
	m.logger.InfoContext(ctx, "Notification router started")
	if err := m.router.Router.Run(ctx); err != nil && ctx.Err() == nil {
		m.logger.ErrorContext(ctx, "Notification router stopped", "error", err)
	}
}

// Publisher is the ledger's first-solve notifier.
func (m *Module) Publisher() *notificationservice.Publisher {
	return m.publisher
}

func (m *Module) Close() error {
	m.logger.Info("Stopping notification module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.router != nil {
		if err := m.router.Close(); err != nil {
			m.logger.Error("Error closing notification router", "error", err)
		}
	}
	return m.eventBus.Close()
}
