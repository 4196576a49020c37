package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/notification"
)

func TestNotificationDispatcher(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NotificationDispatcher Suite")
}

type capturingSender struct {
	mu        sync.Mutex
	delivered []*notification.Notification
	fail      bool
}

func (s *capturingSender) Send(_ context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("endpoint unavailable")
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func (s *capturingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

type mockNotificationRepo struct {
	byID map[string]*notification.Notification
}

func (m *mockNotificationRepo) GetByID(id string) (*notification.Notification, error) {
	n, ok := m.byID[id]
	if !ok {
		return nil, errors.New("notification not found")
	}
	return n, nil
}

func (m *mockNotificationRepo) ListByRecipient(recipientID int64, limit, offset int) ([]*notification.Notification, error) {
	var result []*notification.Notification
	for _, n := range m.byID {
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	return result, nil
}

var _ = Describe("Dispatcher", func() {
	var (
		sender     *capturingSender
		dispatcher *notification.Dispatcher
		logger     *slog.Logger
	)

	BeforeEach(func() {
		sender = &capturingSender{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		dispatcher = notification.NewDispatcher(notification.DispatcherConfig{MaxWorkers: 2}, sender, logger)
	})

	AfterEach(func() {
		dispatcher.Shutdown()
	})

	It("delivers enqueued notifications through the worker pool", func() {
		for i := 0; i < 5; i++ {
			dispatcher.Enqueue(&notification.Notification{
				ID:          time.Now().Format("150405.000000000") + string(rune('a'+i)),
				RecipientID: int64(i),
				Type:        "timesheet.submitted",
			})
		}

		Eventually(sender.count, time.Second, 10*time.Millisecond).Should(Equal(5))
	})

	It("keeps running when a delivery fails", func() {
		sender.fail = true
		dispatcher.Enqueue(&notification.Notification{ID: "failing", Type: "timesheet.approved"})

		Consistently(sender.count, 100*time.Millisecond, 10*time.Millisecond).Should(Equal(0))

		sender.fail = false
		dispatcher.Enqueue(&notification.Notification{ID: "recovering", Type: "timesheet.approved"})
		Eventually(sender.count, time.Second, 10*time.Millisecond).Should(Equal(1))
	})
})

var _ = Describe("EventHandler", func() {
	var (
		sender     *capturingSender
		dispatcher *notification.Dispatcher
		repo       *mockNotificationRepo
		handler    *notification.EventHandler
		bus        *events.EventBus
		logger     *slog.Logger
	)

	BeforeEach(func() {
		sender = &capturingSender{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		dispatcher = notification.NewDispatcher(notification.DispatcherConfig{MaxWorkers: 1}, sender, logger)
		repo = &mockNotificationRepo{byID: map[string]*notification.Notification{
			"n-1": {ID: "n-1", RecipientID: 3, Type: "timesheet.submitted"},
		}}
		handler = notification.NewEventHandler(repo, dispatcher, logger)
		bus = events.NewEventBus(logger)
		handler.RegisterHandlers(bus)
	})

	AfterEach(func() {
		dispatcher.Shutdown()
	})

	It("loads the committed row and queues it for delivery", func() {
		err := bus.PublishSync(context.Background(), events.NewNotificationCreatedEvent("n-1", 3, "timesheet.submitted"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(sender.count, time.Second, 10*time.Millisecond).Should(Equal(1))
	})

	It("propagates a missing row as a handler error", func() {
		err := bus.PublishSync(context.Background(), events.NewNotificationCreatedEvent("missing", 3, "timesheet.submitted"))
		Expect(err).To(HaveOccurred())
	})
})
