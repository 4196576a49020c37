package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/signature"
)

// Repository is append-only: records are created once and never mutated.
type Repository interface {
	Create(log *AuditLog) error
	GetByID(id string) (*AuditLog, error)
	List(limit, offset int) ([]*AuditLog, error)
	ListByResource(resourceType, resourceID string, limit, offset int) ([]*AuditLog, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record signs and persists one audit record. It never returns an error:
// audit is observability, not a correctness precondition, so failures are
// logged for operators and swallowed rather than aborting the primary
// workflow action.
func (s *Service) Record(ctx context.Context, entry Entry) {
	now := time.Now()

	if entry.IPAddress == "" || entry.UserAgent == "" {
		if meta, ok := internal.RequestMetaFromContext(ctx); ok {
			if entry.IPAddress == "" {
				entry.IPAddress = meta.IPAddress
			}
			if entry.UserAgent == "" {
				entry.UserAgent = meta.UserAgent
			}
		}
	}

	log := &AuditLog{
		ID:           uuid.New().String(),
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ActorID:      entry.ActorID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		CreatedAt:    now,
	}

	if entry.OldValues != nil {
		if b, err := json.Marshal(entry.OldValues); err == nil {
			log.OldValues = string(b)
		} else {
			s.logger.Warn("audit: failed to marshal old values", "error", err, "action", entry.Action)
		}
	}
	if entry.NewValues != nil {
		if b, err := json.Marshal(entry.NewValues); err == nil {
			log.NewValues = string(b)
		} else {
			s.logger.Warn("audit: failed to marshal new values", "error", err, "action", entry.Action)
		}
	}

	payload := signature.NewAuditPayload(log.Action, log.ResourceType, log.ResourceID, log.ActorID, log.CreatedAt, log.Details)
	sig, err := signature.Digest(payload)
	if err != nil {
		s.logger.Error("audit: failed to sign record",
			"error", err,
			"action", entry.Action,
			"resource_type", entry.ResourceType,
			"resource_id", entry.ResourceID)
		return
	}
	log.Signature = sig

	if err := s.repo.Create(log); err != nil {
		s.logger.Error("audit: failed to persist record",
			"error", err,
			"action", entry.Action,
			"resource_type", entry.ResourceType,
			"resource_id", entry.ResourceID,
			"actor_id", entry.ActorID)
		return
	}

	s.logger.Debug("audit record written",
		"audit_id", log.ID,
		"action", log.Action,
		"resource_type", log.ResourceType,
		"resource_id", log.ResourceID)
}

// Verify recomputes the stored record's digest and compares it to the stored
// signature. False means the record was altered after creation or carries no
// signature.
func (s *Service) Verify(id string) (bool, error) {
	log, err := s.repo.GetByID(id)
	if err != nil {
		return false, internal.ErrAuditLogNotFound
	}

	payload := signature.NewAuditPayload(log.Action, log.ResourceType, log.ResourceID, log.ActorID, log.CreatedAt, log.Details)
	return signature.Verify(payload, log.Signature), nil
}

func (s *Service) GetByID(id string) (*AuditLog, error) {
	log, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrAuditLogNotFound
	}
	return log, nil
}

func (s *Service) List(limit, offset int) ([]*AuditLog, error) {
	logs, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("audit: failed to list records", "error", err)
		return nil, err
	}
	return logs, nil
}

func (s *Service) ListByResource(resourceType, resourceID string, limit, offset int) ([]*AuditLog, error) {
	logs, err := s.repo.ListByResource(resourceType, resourceID, limit, offset)
	if err != nil {
		s.logger.Error("audit: failed to list records for resource",
			"error", err,
			"resource_type", resourceType,
			"resource_id", resourceID)
		return nil, err
	}
	return logs, nil
}
