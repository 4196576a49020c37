package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimesheetSubmitted  = "timesheet.submitted"
	EventTypeTimesheetDecided    = "timesheet.decided"
	EventTypeTimesheetReopened   = "timesheet.reopened"
	EventTypeNotificationCreated = "notification.created"
)

type TimesheetSubmittedEvent struct {
	BaseEvent
	TimesheetID  int64   `json:"timesheet_id"`
	OwnerID      int64   `json:"owner_id"`
	ValidatorIDs []int64 `json:"validator_ids"`
}

func NewTimesheetSubmittedEvent(timesheetID, ownerID int64, validatorIDs []int64) *TimesheetSubmittedEvent {
	return &TimesheetSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimesheetSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"timesheet_id":  timesheetID,
				"owner_id":      ownerID,
				"validator_ids": validatorIDs,
			},
		},
		TimesheetID:  timesheetID,
		OwnerID:      ownerID,
		ValidatorIDs: validatorIDs,
	}
}

type TimesheetDecidedEvent struct {
	BaseEvent
	TimesheetID int64  `json:"timesheet_id"`
	OwnerID     int64  `json:"owner_id"`
	ValidatorID int64  `json:"validator_id"`
	Decision    string `json:"decision"`
}

func NewTimesheetDecidedEvent(timesheetID, ownerID, validatorID int64, decision string) *TimesheetDecidedEvent {
	return &TimesheetDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimesheetDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"timesheet_id": timesheetID,
				"owner_id":     ownerID,
				"validator_id": validatorID,
				"decision":     decision,
			},
		},
		TimesheetID: timesheetID,
		OwnerID:     ownerID,
		ValidatorID: validatorID,
		Decision:    decision,
	}
}

type TimesheetReopenedEvent struct {
	BaseEvent
	TimesheetID int64 `json:"timesheet_id"`
	OwnerID     int64 `json:"owner_id"`
	ActorID     int64 `json:"actor_id"`
}

func NewTimesheetReopenedEvent(timesheetID, ownerID, actorID int64) *TimesheetReopenedEvent {
	return &TimesheetReopenedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimesheetReopened,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"timesheet_id": timesheetID,
				"owner_id":     ownerID,
				"actor_id":     actorID,
			},
		},
		TimesheetID: timesheetID,
		OwnerID:     ownerID,
		ActorID:     actorID,
	}
}

// NotificationCreatedEvent is published after the transaction that created
// the notification row has committed; the dispatcher picks it up for
// delivery.
type NotificationCreatedEvent struct {
	BaseEvent
	NotificationID string `json:"notification_id"`
	RecipientID    int64  `json:"recipient_id"`
	Kind           string `json:"kind"`
}

func NewNotificationCreatedEvent(notificationID string, recipientID int64, kind string) *NotificationCreatedEvent {
	return &NotificationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotificationCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"notification_id": notificationID,
				"recipient_id":    recipientID,
				"kind":            kind,
			},
		},
		NotificationID: notificationID,
		RecipientID:    recipientID,
		Kind:           kind,
	}
}
