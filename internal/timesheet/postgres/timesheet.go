package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/timesheet-management/internal"
	notificationDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/notification"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// TimesheetRepository implements timesheet.Repository using GORM.
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.Repository {
	return &TimesheetRepository{db: db}
}

// InTransaction runs fn against a repository bound to a single database
// transaction; the transaction commits when fn returns nil.
func (r *TimesheetRepository) InTransaction(fn func(tx timesheet.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&TimesheetRepository{db: tx})
	})
}

func (r *TimesheetRepository) GetSheetByID(id int64) (*timesheet.TimeSheet, error) {
	var record timesheetDatamodel.TimeSheet
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrTimesheetNotFound
	}
	if err != nil {
		return nil, err
	}
	return timesheet.SheetFromDataModel(&record), nil
}

func (r *TimesheetRepository) GetSheetForUpdate(id int64) (*timesheet.TimeSheet, error) {
	var record timesheetDatamodel.TimeSheet
	err := r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrTimesheetNotFound
	}
	if err != nil {
		return nil, err
	}
	return timesheet.SheetFromDataModel(&record), nil
}

func (r *TimesheetRepository) GetSheetByOwnerAndWeek(ownerID int64, weekStart time.Time) (*timesheet.TimeSheet, error) {
	var record timesheetDatamodel.TimeSheet
	err := r.db.
		Where("user_id = ? AND week_start = ?", ownerID, weekStart).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrTimesheetNotFound
	}
	if err != nil {
		return nil, err
	}
	return timesheet.SheetFromDataModel(&record), nil
}

func (r *TimesheetRepository) CreateSheet(sheet *timesheet.TimeSheet) error {
	record := timesheet.SheetToDataModel(sheet)
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	sheet.ID = record.ID
	return nil
}

func (r *TimesheetRepository) SaveSheet(sheet *timesheet.TimeSheet) error {
	return r.db.Save(timesheet.SheetToDataModel(sheet)).Error
}

func (r *TimesheetRepository) ListSheetsByOwner(ownerID int64, limit, offset int) ([]*timesheet.TimeSheet, error) {
	var records []*timesheetDatamodel.TimeSheet
	err := r.db.
		Where("user_id = ?", ownerID).
		Order("week_start DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	sheets := make([]*timesheet.TimeSheet, len(records))
	for i, rec := range records {
		sheets[i] = timesheet.SheetFromDataModel(rec)
	}
	return sheets, nil
}

func (r *TimesheetRepository) GetEntryByID(id int64) (*timesheet.TimeEntry, error) {
	var record timesheetDatamodel.TimeEntry
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return timesheet.EntryFromDataModel(&record), nil
}

func (r *TimesheetRepository) ListEntries(sheetID int64) ([]*timesheet.TimeEntry, error) {
	var records []*timesheetDatamodel.TimeEntry
	err := r.db.
		Where("timesheet_id = ?", sheetID).
		Order("entry_date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return timesheet.EntriesFromDataModel(records), nil
}

func (r *TimesheetRepository) CreateEntry(entry *timesheet.TimeEntry) error {
	record := timesheet.EntryToDataModel(entry)
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	entry.ID = record.ID
	return nil
}

func (r *TimesheetRepository) SaveEntry(entry *timesheet.TimeEntry) error {
	return r.db.Save(timesheet.EntryToDataModel(entry)).Error
}

func (r *TimesheetRepository) DeleteEntry(id int64) error {
	return r.db.Delete(&timesheetDatamodel.TimeEntry{}, id).Error
}

func (r *TimesheetRepository) SumEntries(sheetID int64) (int64, int64, error) {
	var row struct {
		TotalMinutes int64
		EntryCount   int64
	}
	err := r.db.
		Model(&timesheetDatamodel.TimeEntry{}).
		Select("COALESCE(SUM(minutes), 0) AS total_minutes, COUNT(*) AS entry_count").
		Where("timesheet_id = ?", sheetID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.TotalMinutes, row.EntryCount, nil
}

func (r *TimesheetRepository) GetApproval(sheetID, validatorID int64) (*timesheet.Approval, error) {
	var record timesheetDatamodel.Approval
	err := r.db.
		Where("timesheet_id = ? AND validator_id = ?", sheetID, validatorID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return timesheet.ApprovalFromDataModel(&record), nil
}

func (r *TimesheetRepository) ListApprovals(sheetID int64) ([]*timesheet.Approval, error) {
	var records []*timesheetDatamodel.Approval
	err := r.db.
		Where("timesheet_id = ?", sheetID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return timesheet.ApprovalsFromDataModel(records), nil
}

func (r *TimesheetRepository) CreateApproval(approval *timesheet.Approval) error {
	record := timesheet.ApprovalToDataModel(approval)
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	approval.ID = record.ID
	return nil
}

func (r *TimesheetRepository) SaveApproval(approval *timesheet.Approval) error {
	return r.db.Save(timesheet.ApprovalToDataModel(approval)).Error
}

func (r *TimesheetRepository) RejectPendingApprovals(sheetID int64, comment string, at time.Time) (int64, error) {
	result := r.db.
		Model(&timesheetDatamodel.Approval{}).
		Where("timesheet_id = ? AND status = ?", sheetID, timesheet.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":     timesheet.ApprovalStatusRejected,
			"comment":    comment,
			"decided_at": at,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *TimesheetRepository) ListPendingApprovalsForValidator(validatorID int64, limit, offset int) ([]*timesheet.Approval, error) {
	var records []*timesheetDatamodel.Approval
	err := r.db.
		Where("validator_id = ? AND status = ?", validatorID, timesheet.ApprovalStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return timesheet.ApprovalsFromDataModel(records), nil
}

func (r *TimesheetRepository) CreateNotification(n *timesheet.Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	return r.db.Create(&notificationDatamodel.Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		Payload:     string(payload),
	}).Error
}

func (r *TimesheetRepository) ProjectIDsForSheet(sheetID int64) ([]int64, error) {
	var ids []int64
	err := r.db.
		Model(&timesheetDatamodel.TimeEntry{}).
		Distinct("project_id").
		Where("timesheet_id = ?", sheetID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *TimesheetRepository) ValidatorsForProjects(projectIDs []int64) ([]*coreuser.User, error) {
	var records []*userDatamodel.User
	err := r.db.
		Model(&userDatamodel.User{}).
		Where("is_active = ?", true).
		Where("id IN (?)", r.db.
			Model(&projectDatamodel.ProjectValidator{}).
			Select("user_id").
			Where("project_id IN ?", projectIDs)).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return usersFromDataModel(records), nil
}

func (r *TimesheetRepository) UserByID(id int64) (*coreuser.User, error) {
	var record userDatamodel.User
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return userFromDataModel(&record), nil
}

func (r *TimesheetRepository) ActiveApprovers() ([]*coreuser.User, error) {
	var records []*userDatamodel.User
	err := r.db.
		Where("is_active = ? AND role IN ?", true, []string{string(coreuser.RoleValidator), string(coreuser.RoleAdmin)}).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return usersFromDataModel(records), nil
}

func userFromDataModel(record *userDatamodel.User) *coreuser.User {
	return &coreuser.User{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		PasswordHash: record.PasswordHash,
		Role:         coreuser.Role(record.Role),
		AuthProvider: coreuser.AuthProvider(record.AuthProvider),
		ManagerID:    record.ManagerID,
		TOTPSecret:   record.TOTPSecret,
		IsActive:     record.IsActive,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func usersFromDataModel(records []*userDatamodel.User) []*coreuser.User {
	users := make([]*coreuser.User, len(records))
	for i, record := range records {
		users[i] = userFromDataModel(record)
	}
	return users
}
