package notification

import (
	"encoding/json"
	"time"

	notificationDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/notification"
)

// Notification is the delivery-side view of an outbound event record.
type Notification struct {
	ID          string                 `json:"id"`
	RecipientID int64                  `json:"recipient_id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

func FromDataModel(record *notificationDatamodel.Notification) *Notification {
	n := &Notification{
		ID:          record.ID,
		RecipientID: record.RecipientID,
		Type:        record.Type,
		Title:       record.Title,
		Message:     record.Message,
		CreatedAt:   record.CreatedAt,
	}
	if record.Payload != "" {
		// a malformed payload column leaves Payload nil rather than
		// failing the read
		_ = json.Unmarshal([]byte(record.Payload), &n.Payload)
	}
	return n
}

func FromDataModelSlice(records []*notificationDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(records))
	for i, record := range records {
		result[i] = FromDataModel(record)
	}
	return result
}
