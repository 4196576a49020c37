package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

// AuthRepository implements auth.UserStore using GORM.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserStore {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetByEmail(email string) (*coreuser.User, error) {
	var record userDatamodel.User
	err := r.db.Where("email = ?", email).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&record), nil
}

func (r *AuthRepository) GetByID(id int64) (*coreuser.User, error) {
	var record userDatamodel.User
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&record), nil
}

func toDomain(record *userDatamodel.User) *coreuser.User {
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
