package worker

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/observability"
	"github.com/spec-kit/registration-service/internal/service"
)

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return nil
}

func TestStartNotificationWorker_WiresHandlersAndMetrics(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{}
	metrics := observability.NewMetrics()
	notifications := service.NewNotificationService(dispatcher, publisher, "registrations.events", zap.NewNop())

	StartNotificationWorker(dispatcher, notifications, metrics)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:           events.EventRegistrationDeleted,
		RegistrationID: "abc",
		Actor:          events.ActorAdmin,
	}))

	assert.Equal(t, []string{"registrations.events"}, publisher.channels)
	expected := `
# HELP registration_events_total Registration domain events by type.
# TYPE registration_events_total counter
registration_events_total{type="registration.deleted"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "registration_events_total"))
}

func TestStartNotificationWorker_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil, nil, nil)
	})
}
