package challengeservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChallengeService implements the Service interface.
type ChallengeService struct {
	repo    challengedb.Repository
	logger  *slog.Logger
	metrics observability.HuntMetrics
	tracer  trace.Tracer
	db      *bun.DB
	clock   clock.Clock
	parser  *ReleaseTimeParser
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(
	repo challengedb.Repository,
	logger *slog.Logger,
	metrics observability.HuntMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
) *ChallengeService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &ChallengeService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		clock:   clk,
		parser:  NewReleaseTimeParser(),
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ChallengeService,
	ctx context.Context,
	operationName string,
	challengeID string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("challenge_id", challengeID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("challenge_id", challengeID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("challenge_id", challengeID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("challenge_id", challengeID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.String("operation", operationName),
			attr.String("challenge_id", challengeID),
			attr.ExtractCorrelationID(ctx),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ChallengeService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr == nil && result.IsFailure() {
			// Roll back anything written before the domain rejection.
			return errRollback
		}
		return txErr
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}

	return result, err
}
