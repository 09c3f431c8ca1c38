package ledgerservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultNotifyTimeout = 3 * time.Second

// txRunner runs fn inside one transaction.
type txRunner func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error

// LedgerService implements the Service interface.
type LedgerService struct {
	repo          ledgerdb.Repository
	challengeRepo challengedb.Repository
	logger        *slog.Logger
	metrics       observability.HuntMetrics
	tracer        trace.Tracer
	db            *bun.DB
	runTx         txRunner
	clock         clock.Clock
	hunt          HuntWindow
	notifier      FirstSolveNotifier
	notifyTimeout time.Duration
}

// NewLedgerService creates a new LedgerService. A nil db runs every
// operation without a transaction, which only fakes should rely on.
func NewLedgerService(
	repo ledgerdb.Repository,
	challengeRepo challengedb.Repository,
	logger *slog.Logger,
	metrics observability.HuntMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clk clock.Clock,
	hunt HuntWindow,
	notifier FirstSolveNotifier,
	cfg Config,
) *LedgerService {
	if clk == nil {
		clk = clock.Real{}
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	runTx := func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
		return fn(ctx, nil)
	}
	if db != nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
			return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
				return fn(ctx, tx)
			})
		}
	}

	return &LedgerService{
		repo:          repo,
		challengeRepo: challengeRepo,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		db:            db,
		runTx:         runTx,
		clock:         clk,
		hunt:          hunt,
		notifier:      notifier,
		notifyTimeout: cfg.NotifyTimeout,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LedgerService,
	ctx context.Context,
	operationName string,
	targetID string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("target_id", targetID),
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
				attr.String("target_id", targetID),
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
			attr.String("target_id", targetID),
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
			attr.String("target_id", targetID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

// runInTx runs fn in a transaction. A Failure result rolls the transaction
// back. A lock or serialization conflict retries the whole transaction
// once; a second conflict is returned wrapped in ErrTransient.
func runInTx[S any, F any](
	s *LedgerService,
	ctx context.Context,
	operationName string,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	var result results.OperationResult[S, F]
	attempt := func() error {
		result = results.OperationResult[S, F]{}
		return s.runTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			var txErr error
			result, txErr = fn(ctx, tx)
			if txErr == nil && result.IsFailure() {
				return errRollback
			}
			return txErr
		})
	}

	err := attempt()
	if err != nil && ledgerdb.IsTransient(err) {
		s.metrics.RecordTransientRetry(ctx, operationName)
		s.logger.WarnContext(ctx, "Retrying transaction after store conflict",
			attr.String("operation", operationName),
			attr.Error(err),
		)
		err = attempt()
	}

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, errRollback):
		return result, nil
	case ledgerdb.IsTransient(err):
		return result, fmt.Errorf("%w: %w", ErrTransient, err)
	default:
		return result, err
	}
}
