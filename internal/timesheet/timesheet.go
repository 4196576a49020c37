package timesheet

import (
	"time"

	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusReopened  = "reopened"
)

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// ReopenSystemComment is written on approvals that are bulk-rejected when a
// sheet is reopened.
const ReopenSystemComment = "reopened"

type TimeSheet struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	WeekStart     time.Time  `json:"week_start"`
	Status        string     `json:"status"`
	TotalMinutes  int64      `json:"total_minutes"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	LockedBy      *int64     `json:"locked_by,omitempty"`
	IntegrityHash string     `json:"integrity_hash,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsOpen reports whether entries may still be added, edited or deleted.
// Draft and reopened are functionally equivalent open states.
func (t *TimeSheet) IsOpen() bool {
	return t.Status == StatusDraft || t.Status == StatusReopened
}

func (t *TimeSheet) IsLocked() bool {
	return !t.IsOpen()
}

func (t *TimeSheet) CanBeSubmitted() bool {
	return t.IsOpen()
}

// CanBeDecided is true only while the sheet awaits its first decision.
// Once approved or rejected the status is settled until a reopen; later
// validators with a still-pending approval cannot overwrite it.
func (t *TimeSheet) CanBeDecided() bool {
	return t.Status == StatusSubmitted
}

func (t *TimeSheet) CanBeReopened() bool {
	return t.Status == StatusApproved || t.Status == StatusRejected
}

func (t *TimeSheet) TotalHours() float64 {
	return float64(t.TotalMinutes) / 60.0
}

// Lock records the decision outcome on the sheet. The locking actor is the
// validator whose decision is being applied.
func (t *TimeSheet) Lock(decision string, validatorID int64, at time.Time) {
	t.Status = decision
	t.LockedAt = &at
	t.LockedBy = &validatorID
	t.UpdatedAt = at
}

// Unlock moves the sheet back to the reopened state and clears the lock.
func (t *TimeSheet) Unlock(at time.Time) {
	t.Status = StatusReopened
	t.LockedAt = nil
	t.LockedBy = nil
	t.UpdatedAt = at
}

type TimeEntry struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	TimesheetID  int64     `json:"timesheet_id"`
	ProjectID    int64     `json:"project_id"`
	SubProjectID *int64    `json:"sub_project_id,omitempty"`
	EntryDate    time.Time `json:"entry_date"`
	Minutes      int64     `json:"minutes"`
	Billable     bool      `json:"billable"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Approval struct {
	ID          int64      `json:"id"`
	TimesheetID int64      `json:"timesheet_id"`
	ValidatorID int64      `json:"validator_id"`
	Status      string     `json:"status"`
	Comment     string     `json:"comment,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	Signature   string     `json:"signature,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

func (a *Approval) IsPending() bool {
	return a.Status == ApprovalStatusPending
}

// Reset returns an existing approval to pending for re-submission after a
// reopen, clearing the previous decision.
func (a *Approval) Reset(at time.Time) {
	a.Status = ApprovalStatusPending
	a.Comment = ""
	a.DecidedAt = nil
	a.Signature = ""
	a.UpdatedAt = at
}

// Notification is the outbound event record created inside the workflow
// transaction; delivery is owned by the notification subsystem.
type Notification struct {
	ID          string
	RecipientID int64
	Type        string
	Title       string
	Message     string
	Payload     map[string]interface{}
}

const (
	NotificationSubmitted = "timesheet.submitted"
	NotificationApproved  = "timesheet.approved"
	NotificationRejected  = "timesheet.rejected"
	NotificationReopened  = "timesheet.reopened"
)

// WeekStartOf truncates a date to the Monday of its ISO week, in UTC.
func WeekStartOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func SheetToDataModel(t *TimeSheet) *timesheetDatamodel.TimeSheet {
	return &timesheetDatamodel.TimeSheet{
		ID:            t.ID,
		UserID:        t.UserID,
		WeekStart:     t.WeekStart,
		Status:        t.Status,
		TotalMinutes:  t.TotalMinutes,
		SubmittedAt:   t.SubmittedAt,
		LockedAt:      t.LockedAt,
		LockedBy:      t.LockedBy,
		IntegrityHash: t.IntegrityHash,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func SheetFromDataModel(t *timesheetDatamodel.TimeSheet) *TimeSheet {
	return &TimeSheet{
		ID:            t.ID,
		UserID:        t.UserID,
		WeekStart:     t.WeekStart,
		Status:        t.Status,
		TotalMinutes:  t.TotalMinutes,
		SubmittedAt:   t.SubmittedAt,
		LockedAt:      t.LockedAt,
		LockedBy:      t.LockedBy,
		IntegrityHash: t.IntegrityHash,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func EntryToDataModel(e *TimeEntry) *timesheetDatamodel.TimeEntry {
	return &timesheetDatamodel.TimeEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		TimesheetID:  e.TimesheetID,
		ProjectID:    e.ProjectID,
		SubProjectID: e.SubProjectID,
		EntryDate:    e.EntryDate,
		Minutes:      e.Minutes,
		Billable:     e.Billable,
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func EntryFromDataModel(e *timesheetDatamodel.TimeEntry) *TimeEntry {
	return &TimeEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		TimesheetID:  e.TimesheetID,
		ProjectID:    e.ProjectID,
		SubProjectID: e.SubProjectID,
		EntryDate:    e.EntryDate,
		Minutes:      e.Minutes,
		Billable:     e.Billable,
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func EntriesFromDataModel(entries []*timesheetDatamodel.TimeEntry) []*TimeEntry {
	result := make([]*TimeEntry, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDataModel(e)
	}
	return result
}

func ApprovalToDataModel(a *Approval) *timesheetDatamodel.Approval {
	return &timesheetDatamodel.Approval{
		ID:          a.ID,
		TimesheetID: a.TimesheetID,
		ValidatorID: a.ValidatorID,
		Status:      a.Status,
		Comment:     a.Comment,
		DecidedAt:   a.DecidedAt,
		Signature:   a.Signature,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ApprovalFromDataModel(a *timesheetDatamodel.Approval) *Approval {
	return &Approval{
		ID:          a.ID,
		TimesheetID: a.TimesheetID,
		ValidatorID: a.ValidatorID,
		Status:      a.Status,
		Comment:     a.Comment,
		DecidedAt:   a.DecidedAt,
		Signature:   a.Signature,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ApprovalsFromDataModel(approvals []*timesheetDatamodel.Approval) []*Approval {
	result := make([]*Approval, len(approvals))
	for i, a := range approvals {
		result[i] = ApprovalFromDataModel(a)
	}
	return result
}
