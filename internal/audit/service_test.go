package audit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/audit"
)

func TestAuditService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AuditService Suite")
}

// Mock repository for testing
type mockAuditRepository struct {
	logs        map[string]*audit.AuditLog
	ordered     []*audit.AuditLog
	createError error
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{
		logs: make(map[string]*audit.AuditLog),
	}
}

func (m *mockAuditRepository) Create(log *audit.AuditLog) error {
	if m.createError != nil {
		return m.createError
	}
	m.logs[log.ID] = log
	m.ordered = append(m.ordered, log)
	return nil
}

func (m *mockAuditRepository) GetByID(id string) (*audit.AuditLog, error) {
	log, ok := m.logs[id]
	if !ok {
		return nil, errors.New("audit log not found")
	}
	return log, nil
}

func (m *mockAuditRepository) List(limit, offset int) ([]*audit.AuditLog, error) {
	if offset >= len(m.ordered) {
		return []*audit.AuditLog{}, nil
	}
	end := offset + limit
	if end > len(m.ordered) {
		end = len(m.ordered)
	}
	return m.ordered[offset:end], nil
}

func (m *mockAuditRepository) ListByResource(resourceType, resourceID string, limit, offset int) ([]*audit.AuditLog, error) {
	var filtered []*audit.AuditLog
	for _, l := range m.ordered {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

var _ = Describe("AuditService", func() {
	var (
		service *audit.Service
		repo    *mockAuditRepository
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockAuditRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = audit.NewService(repo, logger)
		ctx = context.Background()
	})

	Describe("Record", func() {
		It("persists a signed record with snapshots", func() {
			service.Record(ctx, audit.Entry{
				Action:       audit.ActionSubmit,
				ResourceType: "timesheet",
				ResourceID:   "42",
				ActorID:      7,
				Details:      "submitted for week 2026-03-02",
				NewValues:    map[string]interface{}{"status": "submitted"},
				IPAddress:    "10.0.0.1",
				UserAgent:    "test-agent",
			})

			Expect(repo.ordered).To(HaveLen(1))
			record := repo.ordered[0]
			Expect(record.ID).ToNot(BeEmpty())
			Expect(record.Signature).To(HaveLen(64))
			Expect(record.NewValues).To(ContainSubstring("submitted"))
			Expect(record.IPAddress).To(Equal("10.0.0.1"))
		})

		It("swallows repository failures instead of propagating them", func() {
			repo.createError = errors.New("connection refused")

			Expect(func() {
				service.Record(ctx, audit.Entry{
					Action:       audit.ActionCreate,
					ResourceType: "time_entry",
					ResourceID:   "1",
					ActorID:      7,
				})
			}).ToNot(Panic())

			Expect(repo.ordered).To(BeEmpty())
		})
	})

	Describe("Verify", func() {
		It("returns true for a freshly recorded entry", func() {
			service.Record(ctx, audit.Entry{
				Action:       audit.ActionDecide,
				ResourceType: "timesheet",
				ResourceID:   "42",
				ActorID:      9,
				Details:      "approved",
			})

			record := repo.ordered[0]
			valid, err := service.Verify(record.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(valid).To(BeTrue())
		})

		It("returns false after any signed field is mutated", func() {
			service.Record(ctx, audit.Entry{
				Action:       audit.ActionDecide,
				ResourceType: "timesheet",
				ResourceID:   "42",
				ActorID:      9,
				Details:      "approved",
			})

			record := repo.ordered[0]
			record.ActorID = 99

			valid, err := service.Verify(record.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(valid).To(BeFalse())
		})

		It("returns false when the signature is absent", func() {
			service.Record(ctx, audit.Entry{
				Action:       audit.ActionReopen,
				ResourceType: "timesheet",
				ResourceID:   "42",
				ActorID:      3,
			})

			record := repo.ordered[0]
			record.Signature = ""

			valid, err := service.Verify(record.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(valid).To(BeFalse())
		})

		It("fails with not found for an unknown record", func() {
			_, err := service.Verify("00000000-0000-0000-0000-000000000000")
			Expect(err).To(HaveOccurred())
		})
	})
})
