package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"glaminator/internal/model"
)

// PostFilter narrows a post listing. Zero values disable a criterion.
type PostFilter struct {
	AuthorID uuid.UUID
	UnseenBy uuid.UUID
	// AllTags keeps posts carrying every listed tag.
	AllTags []model.PostTag
}

// PostRepository defines post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	Upsert(ctx context.Context, post *model.Post) (created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	List(ctx context.Context, filter PostFilter) ([]model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	AddLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	MarkSeen(ctx context.Context, postID, userID uuid.UUID) error
	RemoveUserActivity(ctx context.Context, userID uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post together with its tag links.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Likes", "Views").Create(post).Error
}

// Update rewrites the editable columns and replaces the tag set.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(post).Select("title", "content", "image_urls").Updates(post).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", post.ID).Delete(&model.PostTagLink{}).Error; err != nil {
		return err
	}
	if len(post.Tags) == 0 {
		return nil
	}
	for i := range post.Tags {
		post.Tags[i].PostID = post.ID
	}
	return db.Create(&post.Tags).Error
}

// Upsert creates the post or rewrites it when the id exists.
func (r *postRepository) Upsert(ctx context.Context, post *model.Post) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, r.Update(ctx, post)
	}
	return true, r.Create(ctx, post)
}

// FindByID finds a post by ID with tags, likes and views.
func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.preload(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns matching posts, newest first.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]model.Post, error) {
	db := r.db.WithContext(ctx)
	q := r.preload(db).Order("timestamp DESC")

	if filter.AuthorID != uuid.Nil {
		q = q.Where("user_id = ?", filter.AuthorID)
	}
	if filter.UnseenBy != uuid.Nil {
		seen := db.Model(&model.PostView{}).Select("post_id").Where("user_id = ?", filter.UnseenBy)
		q = q.Where("id NOT IN (?)", seen)
	}
	if len(filter.AllTags) > 0 {
		tagged := db.Model(&model.PostTagLink{}).
			Select("post_id").
			Where("tag IN ?", filter.AllTags).
			Group("post_id").
			Having("COUNT(DISTINCT tag) = ?", len(filter.AllTags))
		q = q.Where("id IN (?)", tagged)
	}

	var posts []model.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags").Preload("Likes").Preload("Views")
}

// Delete removes a post and everything hanging off it.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.deleteWhere(ctx, "id = ?", id)
}

// DeleteByUser removes every post authored by the user.
func (r *postRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.deleteWhere(ctx, "user_id = ?", userID)
}

func (r *postRepository) deleteWhere(ctx context.Context, query string, arg interface{}) error {
	db := r.db.WithContext(ctx)
	postIDs := db.Model(&model.Post{}).Select("id").Where(query, arg)
	commentIDs := db.Model(&model.Comment{}).Select("id").Where("post_id IN (?)", postIDs)

	steps := []struct {
		model interface{}
		where string
		arg   interface{}
	}{
		{&model.CommentLike{}, "comment_id IN (?)", commentIDs},
		{&model.Comment{}, "post_id IN (?)", postIDs},
		{&model.PostLike{}, "post_id IN (?)", postIDs},
		{&model.PostView{}, "post_id IN (?)", postIDs},
		{&model.PostTagLink{}, "post_id IN (?)", postIDs},
	}
	for _, step := range steps {
		if err := db.Where(step.where, step.arg).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return db.Where(query, arg).Delete(&model.Post{}).Error
}

// AddLike records a like; it reports false when the user already liked the post.
func (r *postRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostLike{PostID: postID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RemoveLike deletes a like; it reports false when there was none.
func (r *postRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.PostLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) HasLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSeen records that the user has seen the post. Repeated calls are no-ops.
func (r *postRepository) MarkSeen(ctx context.Context, postID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostView{PostID: postID, UserID: userID}).Error
}

// RemoveUserActivity drops the user's likes and views on other posts.
func (r *postRepository) RemoveUserActivity(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.PostLike{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&model.PostView{}).Error
}
