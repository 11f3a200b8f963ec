package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/events"
)

// defaultPublishTimeout caps how long a mutation waits on the external channel.
const defaultPublishTimeout = 2 * time.Second

// EventPublisher forwards serialized events to an external channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	channel    string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil publisher limits it to audit logging.
func NewNotificationService(dispatcher events.Dispatcher, publisher EventPublisher, channel string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		channel:    channel,
		timeout:    defaultPublishTimeout,
		logger:     loggerOrNop(logger),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationCreated, n.handleRegistrationCreated)
	n.dispatcher.Subscribe(events.EventRegistrationStatusChanged, n.handleRegistrationStatusChanged)
	n.dispatcher.Subscribe(events.EventRegistrationUpdated, n.handleRegistrationUpdated)
	n.dispatcher.Subscribe(events.EventRegistrationDeleted, n.handleRegistrationDeleted)
}

func (n *NotificationService) handleRegistrationCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationCreated", zap.String("registration_id", event.RegistrationID), zap.Any("payload", event.Payload))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) handleRegistrationStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationStatusChanged", zap.String("registration_id", event.RegistrationID), zap.Any("payload", event.Payload))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) handleRegistrationUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationUpdated", zap.String("registration_id", event.RegistrationID), zap.Any("payload", event.Payload))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) handleRegistrationDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationDeleted",
		zap.String("registration_id", event.RegistrationID),
		zap.String("actor", string(event.Actor)),
		zap.String("admin_id", event.ActorID))
	return n.fanOut(ctx, event)
}

func (n *NotificationService) fanOut(ctx context.Context, event events.Event) error {
	if n.publisher == nil || n.channel == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, n.channel, payload); err != nil {
		n.logger.Debug("event fan-out failed",
			zap.String("channel", n.channel),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
