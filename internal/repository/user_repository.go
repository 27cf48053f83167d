package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"glaminator/internal/model"
)

// Lookup fields accepted by UserRepository.FindBy.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindBy(ctx context.Context, field, value string) (*model.User, error)
	Upsert(ctx context.Context, user *model.User) (created bool, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

// Update saves profile columns only; the reward ledger is written through
// RewardRepository.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("username", "email", "password_hash").
		Updates(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Rewards").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindBy looks a user up by email or username.
func (r *userRepository) FindBy(ctx context.Context, field, value string) (*model.User, error) {
	if field != FieldEmail && field != FieldUsername {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Rewards").
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user or refreshes its profile when the id exists.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) (bool, error) {
	var existing model.User
	err := r.db.WithContext(ctx).Where("id = ?", user.ID).First(&existing).Error
	if err == nil {
		return false, r.Update(ctx, user)
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}
	return true, r.Create(ctx, user)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error
}
