package notification

import "time"

// Notification is the outbound event record. Delivery and read tracking are
// owned by the external notification subsystem.
type Notification struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	RecipientID int64     `gorm:"column:recipient_id;not null;index"`
	Type        string    `gorm:"column:type;not null"`
	Title       string    `gorm:"column:title;not null"`
	Message     string    `gorm:"column:message"`
	Payload     string    `gorm:"column:payload;type:jsonb"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}
