package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"glaminator/internal/model"
)

// RewardRepository persists the per-user reward ledger and grant history.
// Balance changes are single atomic statements, never read-modify-write.
type RewardRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.UserReward, error)
	Increment(ctx context.Context, userID uuid.UUID, rewardType model.RewardType, quantity int64) error
	Decrement(ctx context.Context, userID uuid.UUID, rewardType model.RewardType, quantity int64) (bool, error)
	SetBalance(ctx context.Context, userID uuid.UUID, rewardType model.RewardType, quantity int64) error
	CreateGrant(ctx context.Context, grant *model.RewardGrant) (bool, error)
	ListGrants(ctx context.Context, userID uuid.UUID, limit int) ([]model.RewardGrant, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type rewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

// FindByUser returns every ledger entry of the user.
func (r *rewardRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.UserReward, error) {
	var rewards []model.UserReward
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

// Increment adds quantity to the entry, creating it when absent.
func (r *rewardRepository) Increment(ctx context.Context, userID uuid.UUID, rewardType model.RewardType, quantity int64) error {
	entry := model.UserReward{
		UserID:   userID,
		Type:     rewardType,
		Quantity: quantity,
		Version:  1,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&entry).Error
}

// Decrement subtracts quantity only if the balance covers it. It reports
// false, without writing, when the entry is missing or too small.
func (r *rewardRepository) Decrement(ctx context.Context, userID uuid.UUID, rewardType model.RewardType, quantity int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.UserReward{}).
		Where("user_id = ? AND reward_type = ? AND quantity >= ?", userID, rewardType, quantity).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - ?", quantity),
			"version":  gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetBalance overwrites the entry, used by seeding.
func (r *rewardRepository) SetBalance(ctx context.Context, userID uuid.UUID, rewardType model.RewardType, quantity int64) error {
	entry := model.UserReward{
		UserID:   userID,
		Type:     rewardType,
		Quantity: quantity,
		Version:  1,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&entry).Error
}

// CreateGrant records a grant. It reports false when a grant with the same
// id already exists.
func (r *rewardRepository) CreateGrant(ctx context.Context, grant *model.RewardGrant) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(grant)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListGrants returns the newest grants first.
func (r *rewardRepository) ListGrants(ctx context.Context, userID uuid.UUID, limit int) ([]model.RewardGrant, error) {
	var grants []model.RewardGrant
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// DeleteByUser removes the user's ledger and grant history.
func (r *rewardRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserReward{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RewardGrant{}).Error
}
