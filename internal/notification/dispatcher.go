package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Sender delivers one notification to the outside world.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// WebhookSender posts notifications as JSON to a configured endpoint, e.g.
// a chat-integration or mail relay.
type WebhookSender struct {
	webhookURL string
	apiKey     string
	timeout    time.Duration
	logger     *slog.Logger
}

func NewWebhookSender(webhookURL, apiKey string, timeout time.Duration, logger *slog.Logger) *WebhookSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		webhookURL: webhookURL,
		apiKey:     apiKey,
		timeout:    timeout,
		logger:     logger,
	}
}

func (s *WebhookSender) Send(ctx context.Context, n *Notification) error {
	if s.webhookURL == "" {
		s.logger.Debug("no webhook configured, dropping notification", "notification_id", n.ID)
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type deliveryJob struct {
	notification *Notification
}

type worker struct {
	id         int
	workerPool chan chan deliveryJob
	jobChannel chan deliveryJob
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan deliveryJob, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan deliveryJob),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, process func(deliveryJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker delivering notification", "worker_id", w.id, "notification_id", job.notification.ID)
				process(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// DispatcherConfig sizes the delivery worker pool.
type DispatcherConfig struct {
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

// Dispatcher fans delivery out over a bounded worker pool so a slow webhook
// endpoint never blocks the request path. Delivery is best effort; failures
// are logged and the notification stays readable through the feed.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger

	jobQueue   chan deliveryJob
	workerPool chan chan deliveryJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(config DispatcherConfig, sender Sender, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	d := &Dispatcher{
		sender:     sender,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan deliveryJob, jobQueueSize),
		workerPool: make(chan chan deliveryJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.startWorkerPool()

	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			w := newWorker(i, d.workerPool, d.logger)
			w.start(d.ctx, &d.wg, d.deliver)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

// Enqueue queues a notification for delivery. A full queue drops the
// delivery rather than blocking the caller.
func (d *Dispatcher) Enqueue(n *Notification) {
	select {
	case d.jobQueue <- deliveryJob{notification: n}:
		d.logger.Debug("notification queued for delivery",
			"notification_id", n.ID,
			"queue_length", len(d.jobQueue))
	default:
		d.logger.Warn("notification queue full, dropping delivery",
			"notification_id", n.ID,
			"queue_capacity", cap(d.jobQueue))
	}
}

func (d *Dispatcher) deliver(job deliveryJob) {
	if err := d.sender.Send(d.ctx, job.notification); err != nil {
		d.logger.Error("notification delivery failed",
			"notification_id", job.notification.ID,
			"recipient_id", job.notification.RecipientID,
			"error", err)
		return
	}
	d.logger.Info("notification delivered",
		"notification_id", job.notification.ID,
		"recipient_id", job.notification.RecipientID,
		"type", job.notification.Type)
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down notification dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}
