package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/events"
)

type capturePublisher struct {
	channel  string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channel = channel
	p.payloads = append(p.payloads, payload)
	return p.err
}

func TestNotificationService_FansOutEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &capturePublisher{}
	NewNotificationService(dispatcher, publisher, "registrations.events", zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:             "evt-1",
		Type:           events.EventRegistrationStatusChanged,
		RegistrationID: "reg-1",
		Actor:          events.ActorAdmin,
		Payload:        events.RegistrationStatusChangedPayload{OldStatus: "pending", NewStatus: "approved"},
	})
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "registrations.events", publisher.channel)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &decoded))
	assert.Equal(t, "registration.status_changed", decoded["type"])
	assert.Equal(t, "reg-1", decoded["registration_id"])
	assert.Equal(t, map[string]any{"old_status": "pending", "new_status": "approved"}, decoded["payload"])
}

func TestNotificationService_PublisherErrorSurfaces(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	boom := errors.New("redis down")
	NewNotificationService(dispatcher, &capturePublisher{err: boom}, "ch", zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventRegistrationCreated})
	require.ErrorIs(t, err, boom)
}

func TestNotificationService_WithoutPublisherOnlyLogs(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, "ch", zap.NewNop()).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventRegistrationDeleted}))
}

type blockingPublisher struct {
	hadDeadline bool
}

func (p *blockingPublisher) Publish(ctx context.Context, _ string, _ []byte) error {
	_, p.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestNotificationService_StalledPublisherIsBounded(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &blockingPublisher{}
	svc := NewNotificationService(dispatcher, publisher, "ch", zap.NewNop())
	svc.timeout = 20 * time.Millisecond
	svc.RegisterHandlers()

	start := time.Now()
	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventRegistrationCreated})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, publisher.hadDeadline)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNotificationService_DefaultPublishTimeout(t *testing.T) {
	svc := NewNotificationService(nil, nil, "ch", nil)
	assert.Equal(t, defaultPublishTimeout, svc.timeout)
}
