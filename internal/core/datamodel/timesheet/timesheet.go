package timesheet

import "time"

type TimeSheet struct {
	ID            int64      `gorm:"primaryKey"`
	UserID        int64      `gorm:"column:user_id;not null;uniqueIndex:idx_owner_week"`
	WeekStart     time.Time  `gorm:"column:week_start;type:date;not null;uniqueIndex:idx_owner_week"`
	Status        string     `gorm:"column:status;not null;default:draft"`
	TotalMinutes  int64      `gorm:"column:total_minutes;not null;default:0"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at"`
	LockedAt      *time.Time `gorm:"column:locked_at"`
	LockedBy      *int64     `gorm:"column:locked_by"`
	IntegrityHash string     `gorm:"column:integrity_hash"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;default:now()"`
}

func (TimeSheet) TableName() string {
	return "timesheets"
}

type TimeEntry struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	TimesheetID  int64     `gorm:"column:timesheet_id;not null;index"`
	ProjectID    int64     `gorm:"column:project_id;not null"`
	SubProjectID *int64    `gorm:"column:sub_project_id"`
	EntryDate    time.Time `gorm:"column:entry_date;type:date;not null"`
	Minutes      int64     `gorm:"column:minutes;not null"`
	Billable     bool      `gorm:"column:billable;default:true"`
	Description  string    `gorm:"column:description"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

type Approval struct {
	ID          int64      `gorm:"primaryKey"`
	TimesheetID int64      `gorm:"column:timesheet_id;not null;uniqueIndex:idx_sheet_validator"`
	ValidatorID int64      `gorm:"column:validator_id;not null;uniqueIndex:idx_sheet_validator"`
	Status      string     `gorm:"column:status;not null;default:pending"`
	Comment     string     `gorm:"column:comment"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	Signature   string     `gorm:"column:signature"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Approval) TableName() string {
	return "approvals"
}
