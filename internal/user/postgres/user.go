package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/user"
)

// UserRepository implements user.Repository using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*coreuser.User, error) {
	var record userDatamodel.User
	err := r.db.Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(&record), nil
}

func (r *UserRepository) GetByEmail(email string) (*coreuser.User, error) {
	var record userDatamodel.User
	err := r.db.Where("email = ?", email).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, internal.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(&record), nil
}

func (r *UserRepository) List(limit, offset int) ([]*coreuser.User, error) {
	var records []*userDatamodel.User
	err := r.db.
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(records), nil
}

func (r *UserRepository) Create(u *coreuser.User) error {
	record := user.ToDataModel(u)
	if err := r.db.Create(record).Error; err != nil {
		return err
	}
	u.ID = record.ID
	return nil
}

func (r *UserRepository) Save(u *coreuser.User) error {
	return r.db.Save(user.ToDataModel(u)).Error
}
