package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
	"github.com/spec-kit/registration-service/internal/testutil"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

// fakeClock advances by a millisecond on each read so updates are ordered.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Millisecond)
	return t
}

// eventRecorder captures every published event.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) subscribeAll(d events.Dispatcher) {
	for _, et := range events.AllEventTypes {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type fixture struct {
	repo   repository.RegistrationRepository
	clock  *fakeClock
	events *eventRecorder
	intake *IntakeService
	review *ReviewService
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	repo := testutil.NewRegistrationRepository(t)
	clock := newFakeClock(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	recorder.subscribeAll(dispatcher)

	return &fixture{
		repo:   repo,
		clock:  clock,
		events: recorder,
		intake: NewIntakeService(IntakeDependencies{Registrations: repo, Dispatcher: dispatcher, Clock: clock.Now}),
		review: NewReviewService(ReviewDependencies{Registrations: repo, Dispatcher: dispatcher, Clock: clock.Now}),
	}
}

func validInput(name, email string) IntakeInput {
	return IntakeInput{
		FullName: name,
		Email:    email,
		Phone:    "+15551234567",
		Age:      string(domain.Age26To30),
		Goals:    "Grow into a senior backend engineer",
	}
}

func (f *fixture) register(t testing.TB, name, email string) *IntakeReceipt {
	t.Helper()
	receipt, err := f.intake.Register(context.Background(), validInput(name, email))
	require.NoError(t, err)
	return receipt
}

func requireCode(t testing.TB, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}
