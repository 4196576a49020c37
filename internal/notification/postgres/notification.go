package postgres

import (
	"gorm.io/gorm"

	notificationDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/timesheet-management/internal/notification"
)

// NotificationRepository implements notification.Repository using GORM.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) GetByID(id string) (*notification.Notification, error) {
	var record notificationDatamodel.Notification
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return notification.FromDataModel(&record), nil
}

func (r *NotificationRepository) ListByRecipient(recipientID int64, limit, offset int) ([]*notification.Notification, error) {
	var records []*notificationDatamodel.Notification
	err := r.db.
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return notification.FromDataModelSlice(records), nil
}
