package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/audit"
)

// Action kinds recorded by the workflow and CRUD layers.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionSubmit = "timesheet.submit"
	ActionDecide = "timesheet.decide"
	ActionReopen = "timesheet.reopen"
)

type AuditLog struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	ActorID      int64     `json:"actor_id"`
	OldValues    string    `json:"old_values,omitempty"`
	NewValues    string    `json:"new_values,omitempty"`
	Details      string    `json:"details,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Signature    string    `json:"signature"`
	CreatedAt    time.Time `json:"created_at"`
}

// Entry is the input for one audit record. OldValues/NewValues carry
// snapshots for CRUD actions and are marshaled to JSON before persisting.
type Entry struct {
	Action       string
	ResourceType string
	ResourceID   string
	ActorID      int64
	Details      string
	OldValues    interface{}
	NewValues    interface{}
	IPAddress    string
	UserAgent    string
}

func ToDataModel(l *AuditLog) *auditDatamodel.AuditLog {
	return &auditDatamodel.AuditLog{
		ID:           l.ID,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		ActorID:      l.ActorID,
		OldValues:    l.OldValues,
		NewValues:    l.NewValues,
		Details:      l.Details,
		IPAddress:    l.IPAddress,
		UserAgent:    l.UserAgent,
		Signature:    l.Signature,
		CreatedAt:    l.CreatedAt,
	}
}

func FromDataModel(l *auditDatamodel.AuditLog) *AuditLog {
	return &AuditLog{
		ID:           l.ID,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		ActorID:      l.ActorID,
		OldValues:    l.OldValues,
		NewValues:    l.NewValues,
		Details:      l.Details,
		IPAddress:    l.IPAddress,
		UserAgent:    l.UserAgent,
		Signature:    l.Signature,
		CreatedAt:    l.CreatedAt,
	}
}

func FromDataModelSlice(logs []*auditDatamodel.AuditLog) []*AuditLog {
	result := make([]*AuditLog, len(logs))
	for i, l := range logs {
		result[i] = FromDataModel(l)
	}
	return result
}
