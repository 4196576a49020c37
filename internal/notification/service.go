package notification

import (
	"log/slog"
)

type Repository interface {
	GetByID(id string) (*Notification, error)
	ListByRecipient(recipientID int64, limit, offset int) ([]*Notification, error)
}

// Service serves the recipient-facing notification feed; delivery is owned
// by the Dispatcher.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(id string) (*Notification, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListForRecipient(recipientID int64, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByRecipient(recipientID, limit, offset)
}
