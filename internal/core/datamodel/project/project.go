package project

import "time"

type Project struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Billable  bool      `gorm:"column:billable;default:true"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Project) TableName() string {
	return "projects"
}

type SubProject struct {
	ID        int64     `gorm:"primaryKey"`
	ProjectID int64     `gorm:"column:project_id;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (SubProject) TableName() string {
	return "sub_projects"
}

// ProjectValidator links a validator account to a project it may approve
// timesheets for.
type ProjectValidator struct {
	ID        int64     `gorm:"primaryKey"`
	ProjectID int64     `gorm:"column:project_id;not null;uniqueIndex:idx_project_validator"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_project_validator"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (ProjectValidator) TableName() string {
	return "project_validators"
}
