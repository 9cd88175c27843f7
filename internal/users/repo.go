package users

import (
	"context"

	"github.com/angelmondragon/parkinglot-manager/internal/repo"
	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations. Lookups return
// (nil, nil) when no row matches.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return user, nil
}

// Save writes every column of user.
func (r *Repository) Save(ctx context.Context, user *models.User) error {
	if err := r.DB(ctx).Save(user).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return repo.FirstOrNil[models.User](r.DB(ctx).Where("id = ?", id))
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return repo.FirstOrNil[models.User](r.DB(ctx).Where("username = ?", username))
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return repo.FirstOrNil[models.User](r.DB(ctx).Where("email = ?", email))
}

func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return repo.Exists(r.DB(ctx).Where("username = ?", username), &models.User{})
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return repo.Exists(r.DB(ctx).Where("email = ?", email), &models.User{})
}

// DeleteByID hard-deletes the user and reports whether a row was removed.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func translateWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err, "username"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, MsgUsernameExists).WithDetails(map[string]string{"field": "username"})
	case db.IsUniqueViolation(err, "email"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, MsgEmailExists).WithDetails(map[string]string{"field": "email"})
	}
	return err
}
