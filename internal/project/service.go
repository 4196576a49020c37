package project

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	errors "github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/audit"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

type Repository interface {
	GetByID(id int64) (*Project, error)
	GetByName(name string) (*Project, error)
	List(activeOnly bool, limit, offset int) ([]*Project, error)
	Create(p *Project) error
	Save(p *Project) error

	ListSubProjects(projectID int64) ([]*SubProject, error)
	CreateSubProject(s *SubProject) error

	ListValidators(projectID int64) ([]*ValidatorAssignment, error)
	AssignValidator(projectID, userID int64) (*ValidatorAssignment, error)
	RemoveValidator(projectID, userID int64) error

	GetUser(id int64) (*coreuser.User, error)
}

type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	repo    Repository
	auditor Auditor
	logger  *slog.Logger
}

func NewService(repo Repository, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

func (s *Service) Create(ctx context.Context, actor *coreuser.User, dto CreateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByName(dto.Name); err == nil {
		return nil, errors.NewConflictError("a project with this name already exists", errors.ErrCodeValidationFailed)
	}

	now := time.Now()
	p := &Project{
		Name:      dto.Name,
		Billable:  dto.IsBillable(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: "project",
		ResourceID:   strconv.FormatInt(p.ID, 10),
		ActorID:      actor.ID,
		NewValues:    p,
	})

	return p, nil
}

func (s *Service) GetByID(id int64) (*Project, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(activeOnly bool, limit, offset int) ([]*Project, error) {
	return s.repo.List(activeOnly, limit, offset)
}

func (s *Service) ListSubProjects(projectID int64) ([]*SubProject, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}
	return s.repo.ListSubProjects(projectID)
}

func (s *Service) CreateSubProject(ctx context.Context, actor *coreuser.User, projectID int64, dto CreateSubProjectDTO) (*SubProject, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}

	sub := &SubProject{ProjectID: projectID, Name: dto.Name, IsActive: true}
	if err := s.repo.CreateSubProject(sub); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: "sub_project",
		ResourceID:   strconv.FormatInt(sub.ID, 10),
		ActorID:      actor.ID,
		NewValues:    sub,
	})

	return sub, nil
}

func (s *Service) ListValidators(projectID int64) ([]*ValidatorAssignment, error) {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}
	return s.repo.ListValidators(projectID)
}

// AssignValidator links a validator or admin account to the project. Plain
// users cannot be assigned.
func (s *Service) AssignValidator(ctx context.Context, actor *coreuser.User, projectID int64, dto AssignValidatorDTO) (*ValidatorAssignment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(projectID); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(dto.UserID)
	if err != nil {
		return nil, errors.ErrUserNotFound
	}
	if !u.CanApprove() {
		return nil, errors.NewValidationError("only validator or admin accounts can be assigned", errors.ErrCodeNotValidator)
	}
	if !u.IsActive {
		return nil, errors.ErrUserInactive
	}

	assignment, err := s.repo.AssignValidator(projectID, u.ID)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: "project_validator",
		ResourceID:   strconv.FormatInt(assignment.ID, 10),
		ActorID:      actor.ID,
		NewValues:    assignment,
	})

	return assignment, nil
}

func (s *Service) RemoveValidator(ctx context.Context, actor *coreuser.User, projectID, userID int64) error {
	if _, err := s.repo.GetByID(projectID); err != nil {
		return err
	}

	if err := s.repo.RemoveValidator(projectID, userID); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: "project_validator",
		ResourceID:   strconv.FormatInt(projectID, 10),
		ActorID:      actor.ID,
		Details:      "validator " + strconv.FormatInt(userID, 10) + " removed",
	})

	return nil
}
