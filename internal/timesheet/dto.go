package timesheet

import (
	"time"

	errors "github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

// CreateEntryDTO is the request payload for logging work. UserID is only
// honored when the actor is an administrator logging on behalf of someone
// else.
type CreateEntryDTO struct {
	UserID       int64     `json:"user_id,omitempty"`
	ProjectID    int64     `json:"project_id"`
	SubProjectID *int64    `json:"sub_project_id,omitempty"`
	EntryDate    time.Time `json:"entry_date"`
	Minutes      int64     `json:"minutes"`
	Billable     *bool     `json:"billable,omitempty"`
	Description  string    `json:"description,omitempty"`
}

func (dto CreateEntryDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("project_id", dto.ProjectID).
		Required().
		MinInt(1, errors.ErrCodeInvalidProject)
	validator.Field("entry_date", dto.EntryDate).
		Required().
		NotFuture()
	validator.Field("minutes", dto.Minutes).
		Required().
		MinInt(1, errors.ErrCodeInvalidDuration).
		MaxInt(24*60, errors.ErrCodeInvalidDuration)
	validator.Field("description", dto.Description).
		MaxLength(500)
	return validator.Validate()
}

// IsBillable defaults to true when the flag is omitted.
func (dto CreateEntryDTO) IsBillable() bool {
	if dto.Billable == nil {
		return true
	}
	return *dto.Billable
}

// UpdateEntryDTO carries partial updates; nil fields are left unchanged.
type UpdateEntryDTO struct {
	ProjectID    *int64     `json:"project_id,omitempty"`
	SubProjectID *int64     `json:"sub_project_id,omitempty"`
	EntryDate    *time.Time `json:"entry_date,omitempty"`
	Minutes      *int64     `json:"minutes,omitempty"`
	Billable     *bool      `json:"billable,omitempty"`
	Description  *string    `json:"description,omitempty"`
}

func (dto UpdateEntryDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	if dto.Minutes != nil {
		validator.Field("minutes", *dto.Minutes).
			Required().
			MinInt(1, errors.ErrCodeInvalidDuration).
			MaxInt(24*60, errors.ErrCodeInvalidDuration)
	}
	if dto.ProjectID != nil {
		validator.Field("project_id", *dto.ProjectID).
			Required().
			MinInt(1, errors.ErrCodeInvalidProject)
	}
	if dto.EntryDate != nil {
		validator.Field("entry_date", *dto.EntryDate).
			Required().
			NotFuture()
	}
	if dto.Description != nil {
		validator.Field("description", *dto.Description).
			MaxLength(500)
	}
	return validator.Validate()
}

// DecideDTO is the request payload for a validator decision.
type DecideDTO struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment,omitempty"`
}

func (dto DecideDTO) Validate() *errors.AppError {
	if dto.Decision != DecisionApproved && dto.Decision != DecisionRejected {
		return errors.NewValidationError("decision must be either 'approved' or 'rejected'", errors.ErrCodeValidationFailed)
	}
	if dto.Decision == DecisionRejected && dto.Comment == "" {
		return errors.ErrMissingRejectionReason
	}
	return nil
}

// ReopenDTO optionally carries a human-supplied comment for the owner.
type ReopenDTO struct {
	Comment string `json:"comment,omitempty"`
}

// SheetDetail is the read model returned for a single timesheet.
type SheetDetail struct {
	*TimeSheet
	TotalHours float64      `json:"total_hours"`
	Entries    []*TimeEntry `json:"entries"`
	Approvals  []*Approval  `json:"approvals"`
}
