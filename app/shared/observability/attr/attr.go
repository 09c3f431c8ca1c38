// Package attr builds slog attributes with consistent keys.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type correlationKey struct{}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func UUID(key string, value uuid.UUID) slog.Attr { return slog.String(key, value.String()) }

// Error renders err under the "error" key; nil renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// WithCorrelationID stores a correlation id for later log lines.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// ExtractCorrelationID reads the correlation id placed by WithCorrelationID.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(correlationKey{}).(string)
	return slog.String("correlation_id", id)
}
