package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostTag is a category a post can be filed under.
type PostTag string

const (
	TagFashion   PostTag = "FASHION"
	TagBeauty    PostTag = "BEAUTY"
	TagMakeup    PostTag = "MAKEUP"
	TagHair      PostTag = "HAIR"
	TagNails     PostTag = "NAILS"
	TagSkincare  PostTag = "SKINCARE"
	TagLifestyle PostTag = "LIFESTYLE"
	TagTravel    PostTag = "TRAVEL"
	TagFood      PostTag = "FOOD"
	TagFitness   PostTag = "FITNESS"
)

// PostTags lists every known tag.
var PostTags = []PostTag{
	TagFashion, TagBeauty, TagMakeup, TagHair, TagNails,
	TagSkincare, TagLifestyle, TagTravel, TagFood, TagFitness,
}

// ParsePostTag parses a tag name case-insensitively.
func ParsePostTag(s string) (PostTag, error) {
	t := PostTag(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range PostTags {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", s)
}

// Post is a user publication. Timestamp is epoch millis, like the mobile
// client expects.
type Post struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageURLs []string  `json:"image_urls" gorm:"serializer:json;type:text"`
	Timestamp int64     `json:"timestamp" gorm:"not null;index"`
	UpdatedAt time.Time `json:"-"`

	Tags  []PostTagLink `json:"-" gorm:"foreignKey:PostID"`
	Likes []PostLike    `json:"-" gorm:"foreignKey:PostID"`
	Views []PostView    `json:"-" gorm:"foreignKey:PostID"`
}

// BeforeCreate sets UUID and timestamp before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Timestamp == 0 {
		p.Timestamp = time.Now().UnixMilli()
	}
	return nil
}

// TagNames returns the post tags in insertion order.
func (p *Post) TagNames() []PostTag {
	tags := make([]PostTag, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Tag)
	}
	return tags
}

// LikedBy returns the ids of users who liked the post.
func (p *Post) LikedBy() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Likes))
	for _, l := range p.Likes {
		ids = append(ids, l.UserID)
	}
	return ids
}

// SeenBy returns the ids of users who have seen the post.
func (p *Post) SeenBy() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Views))
	for _, v := range p.Views {
		ids = append(ids, v.UserID)
	}
	return ids
}

// PostTagLink attaches a tag to a post.
type PostTagLink struct {
	PostID uuid.UUID `gorm:"type:char(36);primaryKey"`
	Tag    PostTag   `gorm:"type:varchar(32);primaryKey;index"`
}

// TableName overrides the default table name.
func (PostTagLink) TableName() string { return "post_tags" }

// PostLike records that a user liked a post.
type PostLike struct {
	PostID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time
}

// PostView records that a user has seen a post.
type PostView struct {
	PostID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time
}
