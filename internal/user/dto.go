package user

import (
	"strings"

	errors "github.com/frahmantamala/timesheet-management/internal"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

type CreateUserDTO struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password,omitempty"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
	ManagerID    *int64 `json:"manager_id,omitempty"`
}

func (dto CreateUserDTO) Validate() *errors.AppError {
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.NewValidationFieldError("email", "a valid email is required", errors.ErrCodeValidationFailed)
	}
	if dto.Name == "" {
		return errors.NewValidationFieldError("name", "name is required", errors.ErrCodeValidationFailed)
	}
	if !validRole(dto.Role) {
		return errors.NewValidationFieldError("role", "role must be user, validator or admin", errors.ErrCodeValidationFailed)
	}
	switch coreuser.AuthProvider(dto.AuthProvider) {
	case coreuser.ProviderPassword:
		if len(dto.Password) < 8 {
			return errors.NewValidationFieldError("password", "password must be at least 8 characters", errors.ErrCodeValidationFailed)
		}
	case coreuser.ProviderMicrosoft:
		// federated accounts carry no local password
	default:
		return errors.NewValidationFieldError("auth_provider", "auth_provider must be password or microsoft", errors.ErrCodeValidationFailed)
	}
	return nil
}

type AssignManagerDTO struct {
	// ManagerID nil clears the manager link.
	ManagerID *int64 `json:"manager_id"`
}

type ChangeRoleDTO struct {
	Role string `json:"role"`
}

func (dto ChangeRoleDTO) Validate() *errors.AppError {
	if !validRole(dto.Role) {
		return errors.NewValidationFieldError("role", "role must be user, validator or admin", errors.ErrCodeValidationFailed)
	}
	return nil
}

func validRole(role string) bool {
	switch coreuser.Role(role) {
	case coreuser.RoleUser, coreuser.RoleValidator, coreuser.RoleAdmin:
		return true
	}
	return false
}
