package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"glaminator/internal/cache"
	"glaminator/internal/config"
	"glaminator/internal/errors"
	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/repository"
	"glaminator/internal/session"
)

const defaultHistoryLimit = 50

var insufficientMessages = map[model.RewardType]string{
	model.RewardTypePost:    "You don't have enough post. Try a pull!",
	model.RewardTypeLike:    "You don't have enough likes. Try a pull!",
	model.RewardTypeComment: "You don't have enough comment rewards. Try a pull!",
}

// InsufficientReward builds the user-facing error for a failed spend of t.
func InsufficientReward(t model.RewardType) error {
	msg, ok := insufficientMessages[t]
	if !ok {
		msg = errors.ErrInsufficientReward.Error()
	}
	return &errors.InsufficientRewardError{Message: msg}
}

// LedgerService owns every change to a user's reward balances.
type LedgerService interface {
	// Claim adds reward to the session user's balance. A non-nil grantID is
	// recorded in the grant history and makes the claim idempotent.
	Claim(ctx context.Context, sess *session.Session, reward model.Reward, grantID uuid.UUID) error
	// Consume spends quantity of t, failing with no write when the balance
	// is too small.
	Consume(ctx context.Context, sess *session.Session, t model.RewardType, quantity int64) error
	// Spend consumes quantity of t and runs then in the same transaction.
	Spend(ctx context.Context, sess *session.Session, t model.RewardType, quantity int64, then func(ctx context.Context, repos *repository.Repositories) error) error
	Balances(ctx context.Context, sess *session.Session) (map[model.RewardType]int64, error)
	History(ctx context.Context, sess *session.Session, limit int) ([]model.RewardGrant, error)
}

type ledgerService struct {
	repos *repository.Repositories
	tx    repository.Transactor
	cache *cache.Client
	cfg   config.Ledger
	log   *logger.Logger
}

// NewLedgerService creates a ledger over repos. Multi-statement writes run
// through tx.
func NewLedgerService(repos *repository.Repositories, tx repository.Transactor, cache *cache.Client, cfg config.Ledger, log *logger.Logger) LedgerService {
	return &ledgerService{
		repos: repos,
		tx:    tx,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

func (s *ledgerService) Claim(ctx context.Context, sess *session.Session, reward model.Reward, grantID uuid.UUID) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if !reward.Type.Valid() || reward.Quantity <= 0 {
		return errors.ErrInvalidReward
	}

	defer s.invalidate(ctx, sess.UserID)
	return s.retry(ctx, "claim", func() error {
		return s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			if _, err := repos.Users.FindByID(ctx, sess.UserID); err != nil {
				if repository.IsNotFound(err) {
					return errors.ErrUserNotFound
				}
				return fmt.Errorf("find user: %w", err)
			}

			if grantID != uuid.Nil {
				created, err := repos.Rewards.CreateGrant(ctx, &model.RewardGrant{
					ID:       grantID,
					UserID:   sess.UserID,
					Type:     reward.Type,
					Quantity: reward.Quantity,
					Rarity:   reward.Rarity,
				})
				if err != nil {
					return fmt.Errorf("record grant: %w", err)
				}
				if !created {
					// Replayed grant, already folded into the balance.
					return nil
				}
			}

			if err := repos.Rewards.Increment(ctx, sess.UserID, reward.Type, reward.Quantity); err != nil {
				return fmt.Errorf("increment reward: %w", err)
			}
			return nil
		})
	})
}

func (s *ledgerService) Consume(ctx context.Context, sess *session.Session, t model.RewardType, quantity int64) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if !t.Valid() || quantity <= 0 {
		return errors.ErrInvalidReward
	}

	defer s.invalidate(ctx, sess.UserID)
	return s.retry(ctx, "consume", func() error {
		return consume(ctx, s.repos, sess.UserID, t, quantity)
	})
}

func (s *ledgerService) Spend(ctx context.Context, sess *session.Session, t model.RewardType, quantity int64, then func(ctx context.Context, repos *repository.Repositories) error) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if !t.Valid() || quantity <= 0 {
		return errors.ErrInvalidReward
	}

	defer s.invalidate(ctx, sess.UserID)
	return s.retry(ctx, "spend", func() error {
		return s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
			if err := consume(ctx, repos, sess.UserID, t, quantity); err != nil {
				return err
			}
			return then(ctx, repos)
		})
	})
}

// invalidate drops the cached profile, which embeds the balances.
func (s *ledgerService) invalidate(ctx context.Context, userID uuid.UUID) {
	_ = s.cache.Delete(ctx, userCacheKey(userID))
}

func consume(ctx context.Context, repos *repository.Repositories, userID uuid.UUID, t model.RewardType, quantity int64) error {
	ok, err := repos.Rewards.Decrement(ctx, userID, t, quantity)
	if err != nil {
		return fmt.Errorf("decrement reward: %w", err)
	}
	if !ok {
		return InsufficientReward(t)
	}
	return nil
}

// Balances returns every currency, zero for the ones never awarded.
func (s *ledgerService) Balances(ctx context.Context, sess *session.Session) (map[model.RewardType]int64, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}

	entries, err := s.repos.Rewards.FindByUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("find rewards: %w", err)
	}

	balances := make(map[model.RewardType]int64, len(model.RewardTypes))
	for _, t := range model.RewardTypes {
		balances[t] = 0
	}
	for _, e := range entries {
		balances[e.Type] = e.Quantity
	}
	return balances, nil
}

func (s *ledgerService) History(ctx context.Context, sess *session.Session, limit int) ([]model.RewardGrant, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	grants, err := s.repos.Rewards.ListGrants(ctx, sess.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// retry runs fn again on transient store failures only. Business errors
// end the loop immediately.
func (s *ledgerService) retry(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.MaxRetries), ctx)

	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !repository.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		s.log.Warn("ledger write failed, retrying", "op", op, "error", err, "wait", wait)
	})
}
