package postgres

import (
	"github.com/frahmantamala/timesheet-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

// AuditRepository implements the audit.Repository interface using GORM.
// There are deliberately no update or delete methods.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(log *audit.AuditLog) error {
	return r.db.Create(audit.ToDataModel(log)).Error
}

func (r *AuditRepository) GetByID(id string) (*audit.AuditLog, error) {
	var record auditDatamodel.AuditLog
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModel(&record), nil
}

func (r *AuditRepository) List(limit, offset int) ([]*audit.AuditLog, error) {
	var records []*auditDatamodel.AuditLog
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModelSlice(records), nil
}

func (r *AuditRepository) ListByResource(resourceType, resourceID string, limit, offset int) ([]*audit.AuditLog, error) {
	var records []*auditDatamodel.AuditLog
	err := r.db.
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModelSlice(records), nil
}
