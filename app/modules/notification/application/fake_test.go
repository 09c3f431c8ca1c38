package notificationservice

import (
	"context"
	"sync"

	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// FakePublisher is a programmable message.Publisher.
type FakePublisher struct {
	PublishFunc func(topic string, messages ...*message.Message) error
}

func (f *FakePublisher) Publish(topic string, messages ...*message.Message) error {
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

// recordingMetrics keeps notification outcomes in order.
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
