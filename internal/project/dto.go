package project

import (
	errors "github.com/frahmantamala/timesheet-management/internal"
)

type CreateProjectDTO struct {
	Name     string `json:"name"`
	Billable *bool  `json:"billable,omitempty"`
}

func (dto CreateProjectDTO) Validate() *errors.AppError {
	if dto.Name == "" {
		return errors.NewValidationFieldError("name", "name is required", errors.ErrCodeValidationFailed)
	}
	if len(dto.Name) > 200 {
		return errors.NewValidationFieldError("name", "name must be at most 200 characters", errors.ErrCodeValidationFailed)
	}
	return nil
}

func (dto CreateProjectDTO) IsBillable() bool {
	if dto.Billable == nil {
		return true
	}
	return *dto.Billable
}

type CreateSubProjectDTO struct {
	Name string `json:"name"`
}

func (dto CreateSubProjectDTO) Validate() *errors.AppError {
	if dto.Name == "" {
		return errors.NewValidationFieldError("name", "name is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

type AssignValidatorDTO struct {
	UserID int64 `json:"user_id"`
}

func (dto AssignValidatorDTO) Validate() *errors.AppError {
	if dto.UserID < 1 {
		return errors.NewValidationFieldError("user_id", "user_id is required", errors.ErrCodeValidationFailed)
	}
	return nil
}
