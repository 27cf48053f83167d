package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered Glaminator account.
type User struct {
	ID           uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string       `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email        string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string       `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Rewards      []UserReward `json:"rewards" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Balance returns the quantity held for the given currency, zero when the
// user has never been awarded it.
func (u *User) Balance(t RewardType) int64 {
	for _, r := range u.Rewards {
		if r.Type == t {
			return r.Quantity
		}
	}
	return 0
}
