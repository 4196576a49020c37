package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish sample workflow events, inspect the event bus`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample workflow event",
	Long: `Publish a sample timesheet workflow event to the event bus for debugging.
Supported types: timesheet.submitted, timesheet.decided, timesheet.reopened, notification.created`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventTimesheetID int64
	eventOwnerID     int64
	eventActorID     int64
	eventDecision    string
)

func publishSampleEvent(eventType string) error {
	log := logger.L()

	var event events.Event
	switch eventType {
	case events.EventTypeTimesheetSubmitted:
		event = events.NewTimesheetSubmittedEvent(eventTimesheetID, eventOwnerID, []int64{eventActorID})
	case events.EventTypeTimesheetDecided:
		event = events.NewTimesheetDecidedEvent(eventTimesheetID, eventOwnerID, eventActorID, eventDecision)
	case events.EventTypeTimesheetReopened:
		event = events.NewTimesheetReopenedEvent(eventTimesheetID, eventOwnerID, eventActorID)
	case events.EventTypeNotificationCreated:
		event = events.NewNotificationCreatedEvent(fmt.Sprintf("sample-%d", time.Now().Unix()), eventOwnerID, "timesheet_submitted")
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	eventBus := events.NewEventBus(log)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		log.Info("sample handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	log.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.Publish(context.Background(), event); err != nil {
		log.Error("failed to publish event", "error", err)
		return err
	}

	// let the async handler drain before the process exits
	time.Sleep(100 * time.Millisecond)
	log.Info("sample event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventTimesheetID, "timesheet-id", 1, "Timesheet id for the sample payload")
	publishEventCmd.Flags().Int64Var(&eventOwnerID, "owner-id", 1, "Owner id for the sample payload")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor-id", 2, "Validator/actor id for the sample payload")
	publishEventCmd.Flags().StringVar(&eventDecision, "decision", "approved", "Decision for timesheet.decided samples")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
