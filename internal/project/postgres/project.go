package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/project"
)

// ProjectRepository implements project.Repository using GORM.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) project.Repository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(id int64) (*project.Project, error) {
	var record projectDatamodel.Project
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return project.FromDataModel(&record), nil
}

func (r *ProjectRepository) GetByName(name string) (*project.Project, error) {
	var record projectDatamodel.Project
	err := r.db.Where("name = ?", name).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return project.FromDataModel(&record), nil
}

func (r *ProjectRepository) List(activeOnly bool, limit, offset int) ([]*project.Project, error) {
	query := r.db.Order("name ASC").Limit(limit).Offset(offset)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var records []*projectDatamodel.Project
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return project.FromDataModelSlice(records), nil
}

func (r *ProjectRepository) Create(p *project.Project) error {
	record := project.ToDataModel(p)
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	p.ID = record.ID
	return nil
}

func (r *ProjectRepository) Save(p *project.Project) error {
	return r.db.Save(project.ToDataModel(p)).Error
}

func (r *ProjectRepository) ListSubProjects(projectID int64) ([]*project.SubProject, error) {
	var records []*projectDatamodel.SubProject
	err := r.db.
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	result := make([]*project.SubProject, len(records))
	for i, s := range records {
		result[i] = project.SubProjectFromDataModel(s)
	}
	return result, nil
}

func (r *ProjectRepository) CreateSubProject(s *project.SubProject) error {
	record := &projectDatamodel.SubProject{
		ProjectID: s.ProjectID,
		Name:      s.Name,
		IsActive:  s.IsActive,
	}
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	s.ID = record.ID
	return nil
}

func (r *ProjectRepository) ListValidators(projectID int64) ([]*project.ValidatorAssignment, error) {
	var records []*projectDatamodel.ProjectValidator
	err := r.db.
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	result := make([]*project.ValidatorAssignment, len(records))
	for i, a := range records {
		result[i] = project.AssignmentFromDataModel(a)
	}
	return result, nil
}

func (r *ProjectRepository) AssignValidator(projectID, userID int64) (*project.ValidatorAssignment, error) {
	record := &projectDatamodel.ProjectValidator{
		ProjectID: projectID,
		UserID:    userID,
	}
	if err := r.db.Create(record).Error; err != nil {
		return nil, err
	}
	return project.AssignmentFromDataModel(record), nil
}

func (r *ProjectRepository) RemoveValidator(projectID, userID int64) error {
	return r.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&projectDatamodel.ProjectValidator{}).Error
}

func (r *ProjectRepository) GetUser(id int64) (*coreuser.User, error) {
	var record userDatamodel.User
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coreuser.User{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		Role:         coreuser.Role(record.Role),
		AuthProvider: coreuser.AuthProvider(record.AuthProvider),
		ManagerID:    record.ManagerID,
		IsActive:     record.IsActive,
	}, nil
}
