package notificationservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"
)

// FirstSolveTopic carries one message per cohort first solve.
const FirstSolveTopic = "hunt.challenge.first_solve"

// Publisher turns committed first solves into bus messages.
type Publisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	metrics   observability.HuntMetrics
	tracer    trace.Tracer
}

func NewPublisher(publisher message.Publisher, logger *slog.Logger, metrics observability.HuntMetrics, tracer trace.Tracer) *Publisher {
	return &Publisher{publisher: publisher, logger: logger, metrics: metrics, tracer: tracer}
}

// FirstSolve publishes ev and waits at most until ctx is done. The caller
// owns the deadline. A late publish keeps running in the background but its
// result is dropped.
func (p *Publisher) FirstSolve(ctx context.Context, ev ledgerdomain.FirstSolve) error {
	ctx, span := p.tracer.Start(ctx, "notification.FirstSolve")
	defer span.End()

	payload, err := json.Marshal(ev)
	if err != nil {
		p.metrics.RecordNotification(ctx, "marshal_failed")
		return fmt.Errorf("failed to marshal first solve: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	middleware.SetCorrelationID(watermill.NewShortUUID(), msg)
	msg.Metadata.Set("challenge_id", ev.ChallengeID.String())
	msg.Metadata.Set("cohort_id", ev.CohortID.String())

	done := make(chan error, 1)
	go func() {
		done <- p.publisher.Publish(FirstSolveTopic, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			p.metrics.RecordNotification(ctx, "publish_failed")
			span.RecordError(err)
			p.logger.WarnContext(ctx, "Failed to publish first solve",
				attr.UUID("challenge_id", ev.ChallengeID),
				attr.UUID("cohort_id", ev.CohortID),
				attr.Error(err),
			)
			return fmt.Errorf("failed to publish first solve: %w", err)
		}
	case <-ctx.Done():
		p.metrics.RecordNotification(ctx, "publish_timeout")
		p.logger.WarnContext(ctx, "First solve publish timed out",
			attr.UUID("challenge_id", ev.ChallengeID),
			attr.String("message_id", msg.UUID),
		)
		return ctx.Err()
	}

	p.metrics.RecordNotification(ctx, "published")
	p.logger.InfoContext(ctx, "Published first solve",
		attr.UUID("challenge_id", ev.ChallengeID),
		attr.String("cohort", ev.CohortName),
		attr.String("message_id", msg.UUID),
	)
	return nil
}
