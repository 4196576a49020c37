package project

import (
	"time"

	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
)

type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Billable  bool      `json:"billable"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubProject struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}

// ValidatorAssignment links a validator account to a project.
type ValidatorAssignment struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:        p.ID,
		Name:      p.Name,
		Billable:  p.Billable,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		Billable:  p.Billable,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModelSlice(records []*projectDatamodel.Project) []*Project {
	result := make([]*Project, len(records))
	for i, p := range records {
		result[i] = FromDataModel(p)
	}
	return result
}

func SubProjectFromDataModel(s *projectDatamodel.SubProject) *SubProject {
	return &SubProject{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Name:      s.Name,
		IsActive:  s.IsActive,
	}
}

func AssignmentFromDataModel(a *projectDatamodel.ProjectValidator) *ValidatorAssignment {
	return &ValidatorAssignment{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		UserID:    a.UserID,
		CreatedAt: a.CreatedAt,
	}
}
