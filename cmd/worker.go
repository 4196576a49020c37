package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/notification"
	notificationpostgres "github.com/frahmantamala/timesheet-management/internal/notification/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for background services like notification delivery.`,
}

// Notification worker command
var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start notification delivery worker pool",
	Long:  `Start the notification worker pool that delivers queued notifications to the configured webhook`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus `,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers     int
	jobQueueSize   int
	workerPoolSize int
	apiKey         string
	webhookURL     string
)

func startNotificationWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.L()

	dispatcherConfig := notification.DispatcherConfig{
		MaxWorkers:     getIntFlag(maxWorkers, config.Notification.MaxWorkers),
		JobQueueSize:   getIntFlag(jobQueueSize, config.Notification.JobQueueSize),
		WorkerPoolSize: getIntFlag(workerPoolSize, config.Notification.WorkerPoolSize),
	}

	log.Info("starting notification worker",
		"max_workers", dispatcherConfig.MaxWorkers,
		"job_queue_size", dispatcherConfig.JobQueueSize,
		"worker_pool_size", dispatcherConfig.WorkerPoolSize,
		"webhook_url", getStringFlag(webhookURL, config.Notification.WebhookURL))

	sqlxDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	sender := notification.NewWebhookSender(
		getStringFlag(webhookURL, config.Notification.WebhookURL),
		getStringFlag(apiKey, config.Notification.APIKey),
		config.Notification.DeliverTimeout,
		log,
	)
	dispatcher := notification.NewDispatcher(dispatcherConfig, sender, log)

	eventBus := events.NewEventBus(log)
	repo := notificationpostgres.NewNotificationRepository(gormDB)
	notification.NewEventHandler(repo, dispatcher, log).RegisterHandlers(eventBus)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("notification worker is running. Press Ctrl+C to stop.")

	// wait for shutdown signal
	sig := <-sigChan
	log.Info("received signal, shutting down notification worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		dispatcher.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("notification worker pool shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.L()

	eventBus := events.NewEventBus(log)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		log.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	log.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down event bus", "signal", sig)
	log.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&workerPoolSize, "worker-pool-size", 0, "Worker pool channel size (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Webhook API key (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Webhook URL (overrides config)")

	workerCmd.AddCommand(notificationWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
