package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
	apperrors "github.com/spec-kit/registration-service/pkg/util/errorutil"
)

const (
	resourceRegistration = "Registration"
	msgDuplicateEmail    = "This email address is already registered"
)

// Clock returns the current time.
type Clock func() time.Time

// SystemClock returns the wall clock truncated to the precision the stores keep.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

type actorKey struct{}

// WithActor records the authenticated caller for event metadata and audit logs.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFrom returns the caller recorded by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}

// checkID rejects ids that could never have been issued.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound(resourceRegistration, map[string]any{"id": id})
	}
	return nil
}

// validateRecord normalizes reg and converts model violations to an InvalidInput error.
func validateRecord(reg *domain.Registration) error {
	reg.Normalize()
	err := reg.Validate()
	if err == nil {
		return nil
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		message := "Validation failed"
		if len(verr.Violations) == 1 {
			message = verr.Violations[0].Message
		}
		return apperrors.NewValidationError(message, map[string]any{"errors": verr.Violations})
	}
	return apperrors.NewInternalError(err)
}

// mapRepoError translates repository sentinels to domain errors.
func mapRepoError(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resourceRegistration, map[string]any{"id": id})
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewDuplicateEmail(msgDuplicateEmail)
	default:
		return apperrors.NewInternalError(err)
	}
}

// publish emits an event after a committed mutation. Handler failures are
// logged; the mutation has already succeeded.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	if event.ActorID == "" {
		event.ActorID = ActorFrom(ctx)
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("registration_id", event.RegistrationID),
			zap.Error(err))
	}
}
