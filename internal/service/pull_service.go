package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"glaminator/internal/errors"
	"glaminator/internal/gacha"
	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/session"
)

// PullResult is the outcome of a successful gacha pull.
type PullResult struct {
	GrantID    uuid.UUID    `json:"grant_id"`
	Reward     model.Reward `json:"reward"`
	NextPullAt time.Time    `json:"next_pull_at"`
}

// PullStatus reports whether the user may pull now.
type PullStatus struct {
	Ready            bool      `json:"ready"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	NextPullAt       time.Time `json:"next_pull_at"`
}

// PullService runs gacha pulls against the reward ledger.
type PullService interface {
	Pull(ctx context.Context, sess *session.Session) (*PullResult, error)
	Status(ctx context.Context, sess *session.Session) (*PullStatus, error)
	History(ctx context.Context, sess *session.Session, limit int) ([]model.RewardGrant, error)
}

type pullService struct {
	engine   *gacha.Engine
	cooldown *gacha.Cooldown
	ledger   LedgerService
	log      *logger.Logger
	now      func() time.Time
}

// NewPullService creates a pull service.
func NewPullService(engine *gacha.Engine, cooldown *gacha.Cooldown, ledger LedgerService, log *logger.Logger) PullService {
	return &pullService{
		engine:   engine,
		cooldown: cooldown,
		ledger:   ledger,
		log:      log,
		now:      time.Now,
	}
}

// Pull rolls a reward and claims it for the session user. The cooldown
// timestamp is only recorded once the claim is stored.
func (s *pullService) Pull(ctx context.Context, sess *session.Session) (*PullResult, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}

	result := &PullResult{}
	wait, err := s.cooldown.Try(ctx, sess.UserID, func(ctx context.Context) error {
		result.Reward = s.engine.Roll()
		result.GrantID = uuid.New()
		return s.ledger.Claim(ctx, sess, result.Reward, result.GrantID)
	})
	if stderrors.Is(err, errors.ErrPullOnCooldown) {
		return nil, &errors.CooldownError{Remaining: wait}
	}
	if err != nil {
		return nil, err
	}

	result.NextPullAt = s.now().Add(wait)
	s.log.Info("pull granted",
		"user_id", sess.UserID,
		"type", result.Reward.Type,
		"quantity", result.Reward.Quantity,
		"rarity", result.Reward.Rarity,
	)
	return result, nil
}

func (s *pullService) Status(ctx context.Context, sess *session.Session) (*PullStatus, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}

	remaining, err := s.cooldown.Remaining(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &PullStatus{
		Ready:            remaining == 0,
		RemainingSeconds: int64((remaining + time.Second - 1) / time.Second),
		NextPullAt:       s.now().Add(remaining),
	}, nil
}

func (s *pullService) History(ctx context.Context, sess *session.Session, limit int) ([]model.RewardGrant, error) {
	return s.ledger.History(ctx, sess, limit)
}
