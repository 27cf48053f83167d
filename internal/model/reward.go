package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardType is one of the spendable currencies.
type RewardType string

const (
	RewardTypePost    RewardType = "POST"
	RewardTypeComment RewardType = "COMMENT"
	RewardTypeLike    RewardType = "LIKE"
)

// RewardTypes lists every currency in a stable order.
var RewardTypes = []RewardType{RewardTypePost, RewardTypeComment, RewardTypeLike}

// Valid reports whether t is a known currency.
func (t RewardType) Valid() bool {
	switch t {
	case RewardTypePost, RewardTypeComment, RewardTypeLike:
		return true
	}
	return false
}

// ParseRewardType parses a currency name case-insensitively.
func ParseRewardType(s string) (RewardType, error) {
	t := RewardType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown reward type %q", s)
	}
	return t, nil
}

// Rarity is the tier a reward was rolled at.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Reward is a freshly rolled gacha prize. It is never stored on its own,
// only folded into the owner's ledger and recorded as a RewardGrant.
type Reward struct {
	Type     RewardType `json:"type"`
	Quantity int64      `json:"quantity"`
	Rarity   Rarity     `json:"rarity"`
}

// UserReward is a single ledger entry: the balance of one currency.
type UserReward struct {
	UserID    uuid.UUID  `json:"-" gorm:"type:char(36);primaryKey"`
	Type      RewardType `json:"type" gorm:"column:reward_type;type:varchar(16);primaryKey"`
	Quantity  int64      `json:"quantity" gorm:"not null;default:0"`
	Version   int64      `json:"-" gorm:"not null;default:0"`
	UpdatedAt time.Time  `json:"-"`
}

// RewardGrant records a claimed reward. Its ID doubles as the claim
// idempotency key.
type RewardGrant struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;index"`
	Type      RewardType `json:"type" gorm:"column:reward_type;type:varchar(16);not null"`
	Quantity  int64      `json:"quantity" gorm:"not null"`
	Rarity    Rarity     `json:"rarity" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (g *RewardGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
