package service

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glaminator/internal/config"
	"glaminator/internal/errors"
	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/repository"
	"glaminator/internal/session"
)

var testLedgerConfig = config.Ledger{MaxRetries: 3, RetryInterval: time.Millisecond}

func newTestLedger(store *memStore) LedgerService {
	return NewLedgerService(store.repos, store, nil, testLedgerConfig, logger.Nop())
}

func deadlock() error {
	return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

func TestLedgerService_Claim(t *testing.T) {
	tests := []struct {
		name    string
		start   int64
		reward  model.Reward
		want    int64
		wantErr error
	}{
		{
			name:   "creates missing entry",
			reward: model.Reward{Type: model.RewardTypeLike, Quantity: 7, Rarity: model.RarityRare},
			want:   7,
		},
		{
			name:   "increments existing entry",
			start:  3,
			reward: model.Reward{Type: model.RewardTypeLike, Quantity: 2, Rarity: model.RarityCommon},
			want:   5,
		},
		{
			name:    "rejects zero quantity",
			start:   3,
			reward:  model.Reward{Type: model.RewardTypeLike, Quantity: 0},
			want:    3,
			wantErr: errors.ErrInvalidReward,
		},
		{
			name:    "rejects unknown type",
			reward:  model.Reward{Type: "GOLD", Quantity: 1},
			wantErr: errors.ErrInvalidReward,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			user := store.addUser("glam")
			if tt.start > 0 {
				store.setBalance(user.ID, model.RewardTypeLike, tt.start)
			}
			ledger := newTestLedger(store)

			err := ledger.Claim(context.Background(), session.New(user.ID, user.Username), tt.reward, uuid.Nil)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, store.balance(user.ID, model.RewardTypeLike))
		})
	}
}

func TestLedgerService_Claim_NoSession(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	err := ledger.Claim(context.Background(), nil, model.Reward{Type: model.RewardTypePost, Quantity: 1}, uuid.Nil)

	assert.ErrorIs(t, err, errors.ErrNoSession)
	assert.Zero(t, store.callCount("rewards.Increment"))
}

func TestLedgerService_Claim_UnknownUser(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	err := ledger.Claim(context.Background(), session.New(uuid.New(), "ghost"), model.Reward{Type: model.RewardTypePost, Quantity: 1}, uuid.Nil)

	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestLedgerService_Claim_ReplayedGrantIsNoop(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	ledger := newTestLedger(store)
	sess := session.New(user.ID, user.Username)
	reward := model.Reward{Type: model.RewardTypeComment, Quantity: 12, Rarity: model.RarityEpic}
	grantID := uuid.New()

	require.NoError(t, ledger.Claim(context.Background(), sess, reward, grantID))
	require.NoError(t, ledger.Claim(context.Background(), sess, reward, grantID))

	assert.Equal(t, int64(12), store.balance(user.ID, model.RewardTypeComment))
	grants, err := ledger.History(context.Background(), sess, 0)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, grantID, grants[0].ID)
	assert.Equal(t, model.RarityEpic, grants[0].Rarity)
}

func TestLedgerService_Claim_ConcurrentIncrementsAreNotLost(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	ledger := newTestLedger(store)
	sess := session.New(user.ID, user.Username)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, ledger.Claim(context.Background(), sess, model.Reward{Type: model.RewardTypePost, Quantity: 1}, uuid.New()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers), store.balance(user.ID, model.RewardTypePost))
}

func TestLedgerService_Claim_RetriesTransientFailures(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.failNext("rewards.Increment", deadlock(), deadlock())
	ledger := newTestLedger(store)

	err := ledger.Claim(context.Background(), session.New(user.ID, user.Username), model.Reward{Type: model.RewardTypeLike, Quantity: 4}, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 3, store.callCount("rewards.Increment"))
	assert.Equal(t, int64(4), store.balance(user.ID, model.RewardTypeLike))
}

func TestLedgerService_Claim_GivesUpAfterMaxRetries(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.failNext("rewards.Increment", deadlock(), deadlock(), deadlock(), deadlock(), deadlock())
	ledger := newTestLedger(store)

	err := ledger.Claim(context.Background(), session.New(user.ID, user.Username), model.Reward{Type: model.RewardTypeLike, Quantity: 4}, uuid.New())

	assert.True(t, repository.IsTransient(err))
	assert.Equal(t, int(testLedgerConfig.MaxRetries)+1, store.callCount("rewards.Increment"))
	assert.Zero(t, store.balance(user.ID, model.RewardTypeLike))
}

func TestLedgerService_Claim_DoesNotRetryPermanentFailures(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	boom := stderrors.New("syntax error")
	store.failNext("rewards.Increment", boom)
	ledger := newTestLedger(store)

	err := ledger.Claim(context.Background(), session.New(user.ID, user.Username), model.Reward{Type: model.RewardTypeLike, Quantity: 4}, uuid.New())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.callCount("rewards.Increment"))
}

func TestLedgerService_Consume(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypePost, 1)
	ledger := newTestLedger(store)
	sess := session.New(user.ID, user.Username)

	require.NoError(t, ledger.Consume(context.Background(), sess, model.RewardTypePost, 1))
	assert.Zero(t, store.balance(user.ID, model.RewardTypePost))

	err := ledger.Consume(context.Background(), sess, model.RewardTypePost, 1)

	assert.ErrorIs(t, err, errors.ErrInsufficientReward)
	assert.EqualError(t, err, "You don't have enough post. Try a pull!")
	assert.Zero(t, store.balance(user.ID, model.RewardTypePost))
}

func TestLedgerService_Consume_MissingEntry(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	ledger := newTestLedger(store)

	err := ledger.Consume(context.Background(), session.New(user.ID, user.Username), model.RewardTypeLike, 1)

	assert.EqualError(t, err, "You don't have enough likes. Try a pull!")
}

// lostAckRewards applies the first successful Decrement and then reports
// the connection as lost, the way the driver does when the reply never
// arrives.
type lostAckRewards struct {
	repository.RewardRepository
	dropped bool
}

func (r *lostAckRewards) Decrement(ctx context.Context, userID uuid.UUID, t model.RewardType, qty int64) (bool, error) {
	ok, err := r.RewardRepository.Decrement(ctx, userID, t, qty)
	if err == nil && !r.dropped {
		r.dropped = true
		return false, mysql.ErrInvalidConn
	}
	return ok, err
}

func TestLedgerService_Consume_DoesNotRetryAfterStatementSent(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypePost, 5)
	store.repos.Rewards = &lostAckRewards{RewardRepository: store.repos.Rewards}
	ledger := newTestLedger(store)

	err := ledger.Consume(context.Background(), session.New(user.ID, user.Username), model.RewardTypePost, 1)

	assert.ErrorIs(t, err, mysql.ErrInvalidConn)
	assert.Equal(t, int64(4), store.balance(user.ID, model.RewardTypePost))
	assert.Equal(t, 1, store.callCount("rewards.Decrement"))
}

func TestLedgerService_Consume_NoSessionTouchesNothing(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	err := ledger.Consume(context.Background(), &session.Session{}, model.RewardTypeLike, 1)

	assert.ErrorIs(t, err, errors.ErrNoSession)
	assert.Zero(t, store.callCount("rewards.Decrement"))
}

func TestLedgerService_Consume_ConcurrentSpendsNeverOverdraw(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypeComment, 5)
	ledger := newTestLedger(store)
	sess := session.New(user.ID, user.Username)

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ledger.Consume(context.Background(), sess, model.RewardTypeComment, 1) == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded.Load())
	assert.Zero(t, store.balance(user.ID, model.RewardTypeComment))
}

func TestLedgerService_Spend_RollsBackWhenFollowUpFails(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypePost, 2)
	ledger := newTestLedger(store)
	boom := stderrors.New("insert failed")

	err := ledger.Spend(context.Background(), session.New(user.ID, user.Username), model.RewardTypePost, 1,
		func(ctx context.Context, repos *repository.Repositories) error {
			return boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(2), store.balance(user.ID, model.RewardTypePost))
}

func TestLedgerService_Spend_InsufficientSkipsFollowUp(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	ledger := newTestLedger(store)
	called := false

	err := ledger.Spend(context.Background(), session.New(user.ID, user.Username), model.RewardTypeComment, 1,
		func(ctx context.Context, repos *repository.Repositories) error {
			called = true
			return nil
		})

	assert.EqualError(t, err, "You don't have enough comment rewards. Try a pull!")
	assert.False(t, called)
}

func TestLedgerService_Balances(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypeLike, 9)
	ledger := newTestLedger(store)

	balances, err := ledger.Balances(context.Background(), session.New(user.ID, user.Username))

	require.NoError(t, err)
	assert.Equal(t, map[model.RewardType]int64{
		model.RewardTypePost:    0,
		model.RewardTypeComment: 0,
		model.RewardTypeLike:    9,
	}, balances)
}
