package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply attached to a post.
type Comment struct {
	ID        uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	PostID    uuid.UUID     `json:"post_id" gorm:"type:char(36);not null;index"`
	UserID    uuid.UUID     `json:"user_id" gorm:"type:char(36);not null;index"`
	Content   string        `json:"content" gorm:"type:text;not null"`
	Timestamp int64         `json:"timestamp" gorm:"not null;index"`
	UpdatedAt time.Time     `json:"-"`
	Likes     []CommentLike `json:"-" gorm:"foreignKey:CommentID"`
}

// BeforeCreate sets UUID and timestamp before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Timestamp == 0 {
		c.Timestamp = time.Now().UnixMilli()
	}
	return nil
}

// LikedBy returns the ids of users who liked the comment.
func (c *Comment) LikedBy() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Likes))
	for _, l := range c.Likes {
		ids = append(ids, l.UserID)
	}
	return ids
}

// CommentLike records that a user liked a comment.
type CommentLike struct {
	CommentID uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time
}
