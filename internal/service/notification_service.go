package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/fixhub/repairshop/internal/config"
	"github.com/fixhub/repairshop/internal/events"
)

// EventPublisher forwards serialized events to the external sink.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService forwards domain events to the log and the
// configured pub/sub channel. Delivery is fire-and-forget; a failed
// publish never fails the originating operation.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	logger     *zap.Logger
	cfg        config.EventsConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher EventPublisher, logger *zap.Logger, cfg config.EventsConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every forwarded event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketPartAdded,
		events.EventTicketPartRemoved,
		events.EventPaymentRecorded,
		events.EventReturnCreated,
		events.EventReturnApproved,
	} {
		n.dispatcher.Subscribe(eventType, n.forward)
	}
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.Actor.ID))

	if n.publisher == nil || strings.TrimSpace(n.cfg.RedisChannel) == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("event serialization failed", zap.Error(err))
		return nil
	}
	if err := n.publisher.Publish(ctx, n.cfg.RedisChannel, payload); err != nil {
		n.logger.Warn("event publish failed",
			zap.String("channel", n.cfg.RedisChannel),
			zap.Error(err))
	}
	return nil
}
