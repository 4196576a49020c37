package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
)

// EventHandler bridges the in-process event bus to the delivery dispatcher:
// the workflow commits notification rows and publishes notification.created,
// this handler loads the row and hands it to the worker pool.
type EventHandler struct {
	repo       Repository
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewEventHandler(repo Repository, dispatcher *Dispatcher, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeNotificationCreated, h.HandleNotificationCreated)
}

func (h *EventHandler) HandleNotificationCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.NotificationCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	n, err := h.repo.GetByID(created.NotificationID)
	if err != nil {
		return fmt.Errorf("failed to load notification %s: %w", created.NotificationID, err)
	}

	h.dispatcher.Enqueue(n)
	return nil
}
