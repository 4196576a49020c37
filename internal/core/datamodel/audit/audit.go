package audit

import "time"

// AuditLog rows are append-only: created once per action, never updated or
// deleted.
type AuditLog struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Action       string    `gorm:"column:action;not null"`
	ResourceType string    `gorm:"column:resource_type;not null"`
	ResourceID   string    `gorm:"column:resource_id;not null"`
	ActorID      int64     `gorm:"column:actor_id;not null"`
	OldValues    string    `gorm:"column:old_values;type:jsonb"`
	NewValues    string    `gorm:"column:new_values;type:jsonb"`
	Details      string    `gorm:"column:details"`
	IPAddress    string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	Signature    string    `gorm:"column:signature;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
