package user

import (
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

func ToDataModel(u *coreuser.User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		AuthProvider: string(u.AuthProvider),
		ManagerID:    u.ManagerID,
		TOTPSecret:   u.TOTPSecret,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(record *userDatamodel.User) *coreuser.User {
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

func FromDataModelSlice(records []*userDatamodel.User) []*coreuser.User {
	users := make([]*coreuser.User, len(records))
	for i, record := range records {
		users[i] = FromDataModel(record)
	}
	return users
}

// PublicUser is the wire shape exposed by the directory endpoints; it never
// carries credentials or the TOTP secret.
type PublicUser struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
	ManagerID    *int64 `json:"manager_id,omitempty"`
	IsActive     bool   `json:"is_active"`
}

func ToPublic(u *coreuser.User) *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		AuthProvider: string(u.AuthProvider),
		ManagerID:    u.ManagerID,
		IsActive:     u.IsActive,
	}
}

func ToPublicSlice(users []*coreuser.User) []*PublicUser {
	result := make([]*PublicUser, len(users))
	for i, u := range users {
		result[i] = ToPublic(u)
	}
	return result
}
