package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"glaminator/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	AddLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
	RemoveLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("content").Updates(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Preload("Likes").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns the post's comments, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Preload("Likes").
		Where("post_id = ?", postID).
		Order("timestamp ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("comment_id = ?", id).Delete(&model.CommentLike{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Comment{}).Error
}

// DeleteByUser removes the user's comments and every like they placed on
// comments.
func (r *commentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	owned := db.Model(&model.Comment{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("comment_id IN (?)", owned).Delete(&model.CommentLike{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", userID).Delete(&model.CommentLike{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.Comment{}).Error
}

// AddLike records a like; it reports false when the user already liked the comment.
func (r *commentRepository) AddLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CommentLike{CommentID: commentID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RemoveLike deletes a like; it reports false when there was none.
func (r *commentRepository) RemoveLike(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&model.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
