package attr

import (
	"context"
	"errors"
	"testing"
)

func TestExtractCorrelationID(t *testing.T) {
	if got := ExtractCorrelationID(context.Background()).Value.String(); got != "" {
		t.Fatalf("expected empty correlation id, got %q", got)
	}
	ctx := WithCorrelationID(context.Background(), "req-42")
	if got := ExtractCorrelationID(ctx).Value.String(); got != "req-42" {
		t.Fatalf("expected req-42, got %q", got)
	}
}

func TestError(t *testing.T) {
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("Error() = %q", got)
	}
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("Error(nil) = %q", got)
	}
}
