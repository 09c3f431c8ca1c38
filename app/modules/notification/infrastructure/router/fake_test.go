package notificationrouter

import (
	"context"
	"sync"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
)

// FakeDeliverer records delivered events and returns DeliverFunc's answer.
type FakeDeliverer struct {
	DeliverFunc func(ctx context.Context, ev ledgerdomain.FirstSolve) error

	mu        sync.Mutex
	delivered []ledgerdomain.FirstSolve
	calls     chan struct{}
}

func NewFakeDeliverer() *FakeDeliverer {
	return &FakeDeliverer{calls: make(chan struct{}, 16)}
}

func (f *FakeDeliverer) Deliver(ctx context.Context, ev ledgerdomain.FirstSolve) error {
	f.mu.Lock()
	f.delivered = append(f.delivered, ev)
	f.mu.Unlock()
	defer func() { f.calls <- struct{}{} }()
	if f.DeliverFunc != nil {
		return f.DeliverFunc(ctx, ev)
	}
	return nil
}

func (f *FakeDeliverer) Delivered() []ledgerdomain.FirstSolve {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ledgerdomain.FirstSolve(nil), f.delivered...)
}

type recordingMetrics struct {
	observability.NoopMetrics
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) RecordNotification(_ context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) Outcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.outcomes...)
}
