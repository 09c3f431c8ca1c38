package notificationrouter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	notificationservice "github.com/Black-And-White-Club/flag-hunt/app/modules/notification/application"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const firstSolveHandler = "notification.first_solve.discord"

// Deliverer sends a first solve to an outside channel.
type Deliverer interface {
	Deliver(ctx context.Context, ev ledgerdomain.FirstSolve) error
}

// NotificationRouter consumes first-solve events and hands them to a Deliverer.
type NotificationRouter struct {
	logger             *slog.Logger
	Router             *message.Router
	subscriber         message.Subscriber
	metrics            observability.HuntMetrics
	tracer             trace.Tracer
	prometheusRegistry *prometheus.Registry
	deliverTimeout     time.Duration
}

func NewNotificationRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	huntMetrics observability.HuntMetrics,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
	deliverTimeout time.Duration,
) *NotificationRouter {
	return &NotificationRouter{
		logger:             logger,
		Router:             router,
		subscriber:         subscriber,
		metrics:            huntMetrics,
		tracer:             tracer,
		prometheusRegistry: prometheusRegistry,
		deliverTimeout:     deliverTimeout,
	}
}

// Configure registers middleware and the first-solve handler.
func (r *NotificationRouter) Configure(ctx context.Context, sink Deliverer) error {
	if r.prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(r.prometheusRegistry, "", "")
		builder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	r.Router.AddConsumerHandler(firstSolveHandler, notificationservice.FirstSolveTopic, r.subscriber, r.handleFirstSolve(sink))
	r.logger.InfoContext(ctx, "Notification router configured", attr.String("topic", notificationservice.FirstSolveTopic))
	return nil
}

// handleFirstSolve always acks. A failed post is logged and dropped so a
// broken webhook cannot build an endless redelivery loop.
func (r *NotificationRouter) handleFirstSolve(sink Deliverer) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx, span := r.tracer.Start(msg.Context(), "notification.DeliverFirstSolve")
		defer span.End()

		correlation := attr.String("correlation_id", middleware.MessageCorrelationID(msg))

		var ev ledgerdomain.FirstSolve
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			r.metrics.RecordNotification(ctx, "malformed")
			r.logger.ErrorContext(ctx, "Dropping malformed first solve message",
				correlation,
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil
		}

		if r.deliverTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.deliverTimeout)
			defer cancel()
		}

		if err := sink.Deliver(ctx, ev); err != nil {
			outcome := "deliver_failed"
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = "deliver_timeout"
			}
			r.metrics.RecordNotification(ctx, outcome)
			span.RecordError(err)
			r.logger.ErrorContext(ctx, "Failed to deliver first solve notification",
				correlation,
				attr.UUID("challenge_id", ev.ChallengeID),
				attr.String("cohort", ev.CohortName),
				attr.Error(err),
			)
			return nil
		}

		r.metrics.RecordNotification(ctx, "delivered")
		r.logger.InfoContext(ctx, "Delivered first solve notification",
			correlation,
			attr.UUID("challenge_id", ev.ChallengeID),
			attr.String("cohort", ev.CohortName),
		)
		return nil
	}
}

// Close stops the router.
func (r *NotificationRouter) Close() error {
	return r.Router.Close()
}
