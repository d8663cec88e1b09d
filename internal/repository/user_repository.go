package repository

import (
	"context"

	"gorm.io/gorm"

	errs "imagify/internal/errors"
	"imagify/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	AddCredits(ctx context.Context, id uint, credits int64) error
	DeductCredits(ctx context.Context, id uint, credits int64) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddCredits increments the balance without a read-modify-write cycle.
func (r *userRepository) AddCredits(ctx context.Context, id uint, credits int64) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance + ?", credits))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeductCredits decrements the balance only if enough credits remain, so a
// burst of concurrent generation requests cannot drive it negative.
func (r *userRepository) DeductCredits(ctx context.Context, id uint, credits int64) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND credit_balance >= ?", id, credits).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance - ?", credits))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrInsufficientCredits
	}
	return nil
}
