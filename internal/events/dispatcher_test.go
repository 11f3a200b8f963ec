package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []EventType
	d.Subscribe(EventRegistrationCreated, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventRegistrationCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventRegistrationDeleted}))
	assert.Equal(t, []EventType{EventRegistrationCreated}, got)
}

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventRegistrationUpdated, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventRegistrationUpdated, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventRegistrationUpdated})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDispatcher_PanickingHandlerBecomesError(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventRegistrationDeleted, func(context.Context, Event) error {
		panic("nil subscriber state")
	})
	d.Subscribe(EventRegistrationDeleted, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	var err error
	require.NotPanics(t, func() {
		err = d.Publish(context.Background(), Event{Type: EventRegistrationDeleted})
	})
	require.EqualError(t, err, "registration.deleted handler panicked: nil subscriber state")
	assert.True(t, delivered, "later handlers still run")
}
