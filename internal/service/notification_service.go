package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/cityaid-service/internal/events"
)

// NotificationService logs committed domain events for operators. Outbound
// delivery to other systems happens through the Redis event channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCaseCreated, n.handleCaseCreated)
	n.dispatcher.Subscribe(events.EventCaseStateChanged, n.handleCaseStateChanged)
	n.dispatcher.Subscribe(events.EventFileAttached, n.handleFileAttached)
}

func (n *NotificationService) handleCaseCreated(_ context.Context, event events.Event) error {
	n.logger.Info("CaseCreated",
		zap.String("case_id", event.CaseID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleCaseStateChanged(_ context.Context, event events.Event) error {
	n.logger.Info("CaseStateChanged",
		zap.String("case_id", event.CaseID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleFileAttached(_ context.Context, event events.Event) error {
	n.logger.Info("FileAttached",
		zap.String("case_id", event.CaseID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}
