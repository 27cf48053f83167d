package gacha

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"glaminator/internal/errors"
)

const (
	lastPullKeyPrefix = "last_pull_timestamp:"
	lockStripes       = 64
)

// PreferenceStore persists scalar values across restarts.
type PreferenceStore interface {
	GetLong(ctx context.Context, key string, def int64) (int64, error)
	SetLong(ctx context.Context, key string, value int64) error
}

// Cooldown throttles pulls per user using the last-pull timestamp kept in
// the local preference store. The timestamp is only written when a pull
// completes.
type Cooldown struct {
	prefs    PreferenceStore
	interval time.Duration
	now      func() time.Time
	// Striped locks serialize check-and-pull per user. Users sharing a
	// stripe only wait on each other; memory stays fixed.
	locks [lockStripes]sync.Mutex
}

// NewCooldown creates a cooldown gate with the given interval.
func NewCooldown(prefs PreferenceStore, interval time.Duration) *Cooldown {
	return &Cooldown{
		prefs:    prefs,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *Cooldown) WithClock(now func() time.Time) *Cooldown {
	c.now = now
	return c
}

func (c *Cooldown) lockFor(userID uuid.UUID) *sync.Mutex {
	return &c.locks[stripe(userID)]
}

func stripe(userID uuid.UUID) int {
	h := fnv.New32a()
	h.Write(userID[:])
	return int(h.Sum32() % lockStripes)
}

func lastPullKey(userID uuid.UUID) string {
	return lastPullKeyPrefix + userID.String()
}

// LastPull returns the time of the user's last completed pull, zero if none.
func (c *Cooldown) LastPull(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	millis, err := c.prefs.GetLong(ctx, lastPullKey(userID), 0)
	if err != nil {
		return time.Time{}, fmt.Errorf("read last pull: %w", err)
	}
	if millis == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(millis), nil
}

// Remaining returns how long the user must still wait, zero when a pull is
// allowed.
func (c *Cooldown) Remaining(ctx context.Context, userID uuid.UUID) (time.Duration, error) {
	last, err := c.LastPull(ctx, userID)
	if err != nil {
		return 0, err
	}
	if last.IsZero() {
		return 0, nil
	}
	remaining := c.interval - c.now().Sub(last)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Try runs pull if the user is off cooldown and records the pull time once
// pull succeeds. Calls for the same user are serialized, so only one pull
// passes per elapsed interval. On refusal it returns ErrPullOnCooldown and
// the remaining wait.
func (c *Cooldown) Try(ctx context.Context, userID uuid.UUID, pull func(ctx context.Context) error) (time.Duration, error) {
	mu := c.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	remaining, err := c.Remaining(ctx, userID)
	if err != nil {
		return 0, err
	}
	if remaining > 0 {
		return remaining, errors.ErrPullOnCooldown
	}

	if err := pull(ctx); err != nil {
		return 0, err
	}

	if err := c.prefs.SetLong(ctx, lastPullKey(userID), c.now().UnixMilli()); err != nil {
		return 0, fmt.Errorf("record last pull: %w", err)
	}
	return c.interval, nil
}
