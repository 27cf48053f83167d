// Package gacha rolls randomized rewards and throttles how often a user may
// pull one.
package gacha

import (
	"math/rand/v2"
	"sync"
	"time"

	"glaminator/internal/model"
)

// QuantityRange is the inclusive quantity span a rarity pays out.
type QuantityRange struct {
	Min int64
	Max int64
}

var quantityRanges = map[model.Rarity]QuantityRange{
	model.RarityCommon:    {Min: 1, Max: 5},
	model.RarityRare:      {Min: 6, Max: 10},
	model.RarityEpic:      {Min: 11, Max: 15},
	model.RarityLegendary: {Min: 16, Max: 20},
}

// RangeFor returns the quantity span for rarity r.
func RangeFor(r model.Rarity) QuantityRange {
	return quantityRanges[r]
}

// RarityFor maps a roll in [1,100] to a tier: 5% legendary, 10% epic,
// 25% rare, 60% common.
func RarityFor(roll int) model.Rarity {
	switch {
	case roll <= 5:
		return model.RarityLegendary
	case roll <= 15:
		return model.RarityEpic
	case roll <= 40:
		return model.RarityRare
	default:
		return model.RarityCommon
	}
}

// Engine draws rewards from a random source. It is safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine over src. A nil src seeds from the clock.
func NewEngine(src rand.Source) *Engine {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1|1)
	}
	return &Engine{rng: rand.New(src)}
}

// Roll draws a rarity, an independent currency type and a quantity within
// the rarity's range.
func (e *Engine) Roll() model.Reward {
	e.mu.Lock()
	defer e.mu.Unlock()

	rarity := RarityFor(e.rng.IntN(100) + 1)
	rewardType := model.RewardTypes[e.rng.IntN(len(model.RewardTypes))]
	span := quantityRanges[rarity]
	quantity := span.Min + e.rng.Int64N(span.Max-span.Min+1)

	return model.Reward{
		Type:     rewardType,
		Quantity: quantity,
		Rarity:   rarity,
	}
}
