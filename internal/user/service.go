package user

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	errors "github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/audit"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

// managerChainLimit bounds the cycle walk; org charts deeper than this are
// treated as a cycle.
const managerChainLimit = 64

type Repository interface {
	GetByID(id int64) (*coreuser.User, error)
	GetByEmail(email string) (*coreuser.User, error)
	List(limit, offset int) ([]*coreuser.User, error)
	Create(u *coreuser.User) error
	Save(u *coreuser.User) error
}

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}

// SecretGenerator provisions a TOTP secret for new password-provider users.
type SecretGenerator interface {
	GenerateSecret(issuer, accountName string) (string, error)
}

type Service struct {
	repo       Repository
	auditor    Auditor
	secrets    SecretGenerator
	bcryptCost int
	totpIssuer string
	logger     *slog.Logger
}

func NewService(repo Repository, auditor Auditor, secrets SecretGenerator, bcryptCost int, totpIssuer string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		auditor:    auditor,
		secrets:    secrets,
		bcryptCost: bcryptCost,
		totpIssuer: totpIssuer,
		logger:     logger,
	}
}

// Create provisions an account. Password-provider users get a bcrypt hash
// and a fresh TOTP secret; federated users carry neither.
func (s *Service) Create(ctx context.Context, actor *coreuser.User, dto CreateUserDTO) (*coreuser.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		return nil, errors.NewConflictError("a user with this email already exists", errors.ErrCodeDuplicateEmail)
	}

	now := time.Now()
	u := &coreuser.User{
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         coreuser.Role(dto.Role),
		AuthProvider: coreuser.AuthProvider(dto.AuthProvider),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if u.AuthProvider == coreuser.ProviderPassword {
		hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
		if err != nil {
			return nil, errors.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash

		secret, err := s.secrets.GenerateSecret(s.totpIssuer, dto.Email)
		if err != nil {
			return nil, errors.NewInternalError("failed to provision totp secret", err)
		}
		u.TOTPSecret = secret
	}

	if dto.ManagerID != nil {
		manager, err := s.repo.GetByID(*dto.ManagerID)
		if err != nil {
			return nil, errors.ErrUserNotFound
		}
		u.ManagerID = &manager.ID
	}

	if err := s.repo.Create(u); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(u.ID, 10),
		ActorID:      actor.ID,
		NewValues:    ToPublic(u),
	})

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "provider", u.AuthProvider)
	return u, nil
}

func (s *Service) GetByID(id int64) (*coreuser.User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(limit, offset int) ([]*coreuser.User, error) {
	return s.repo.List(limit, offset)
}

// AssignManager sets or clears a user's manager, rejecting links that would
// close a reporting cycle.
func (s *Service) AssignManager(ctx context.Context, actor *coreuser.User, userID int64, dto AssignManagerDTO) (*coreuser.User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, errors.ErrUserNotFound
	}

	before := ToPublic(u)

	if dto.ManagerID == nil {
		u.ManagerID = nil
	} else {
		if *dto.ManagerID == u.ID {
			return nil, errors.ErrManagerCycle
		}
		manager, err := s.repo.GetByID(*dto.ManagerID)
		if err != nil {
			return nil, errors.ErrUserNotFound
		}
		if err := s.checkManagerCycle(u.ID, manager); err != nil {
			return nil, err
		}
		u.ManagerID = &manager.ID
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Save(u); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(u.ID, 10),
		ActorID:      actor.ID,
		Details:      "manager assignment",
		OldValues:    before,
		NewValues:    ToPublic(u),
	})

	return u, nil
}

// ChangeRole moves a user between user, validator and admin.
func (s *Service) ChangeRole(ctx context.Context, actor *coreuser.User, userID int64, dto ChangeRoleDTO) (*coreuser.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, errors.ErrUserNotFound
	}

	before := ToPublic(u)
	u.Role = coreuser.Role(dto.Role)
	u.UpdatedAt = time.Now()

	if err := s.repo.Save(u); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(u.ID, 10),
		ActorID:      actor.ID,
		Details:      "role change",
		OldValues:    before,
		NewValues:    ToPublic(u),
	})

	return u, nil
}

// Deactivate soft-disables an account; historical timesheets and approvals
// stay intact.
func (s *Service) Deactivate(ctx context.Context, actor *coreuser.User, userID int64) error {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return errors.ErrUserNotFound
	}

	before := ToPublic(u)
	u.IsActive = false
	u.UpdatedAt = time.Now()

	if err := s.repo.Save(u); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(u.ID, 10),
		ActorID:      actor.ID,
		Details:      "deactivated",
		OldValues:    before,
		NewValues:    ToPublic(u),
	})

	s.logger.Info("user deactivated", "user_id", u.ID, "actor_id", actor.ID)
	return nil
}

// checkManagerCycle walks up from the proposed manager; hitting userID on
// the way up means the link would close a cycle.
func (s *Service) checkManagerCycle(userID int64, manager *coreuser.User) error {
	current := manager
	for depth := 0; depth < managerChainLimit; depth++ {
		if current.ID == userID {
			return errors.ErrManagerCycle
		}
		if current.ManagerID == nil {
			return nil
		}
		next, err := s.repo.GetByID(*current.ManagerID)
		if err != nil {
			return nil
		}
		current = next
	}
	return errors.ErrManagerCycle
}
