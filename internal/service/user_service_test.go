package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"glaminator/internal/errors"
	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/session"
)

func newTestUserService(store *memStore) UserService {
	return NewUserService(store.repos, store, nil, time.Minute, bcrypt.MinCost, logger.Nop())
}

func TestUserService_GetUser(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypeLike, 3)
	svc := newTestUserService(store)

	got, err := svc.GetUser(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, "glam", got.Username)
	assert.Equal(t, int64(3), got.Balance(model.RewardTypeLike))
	assert.Zero(t, got.Balance(model.RewardTypePost))
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	svc := newTestUserService(newMemStore())

	_, err := svc.GetUser(context.Background(), uuid.New())

	assert.Equal(t, errors.ErrUserNotFound, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	other := store.addUser("taken")
	svc := newTestUserService(store)
	sess := session.New(user.ID, user.Username)

	updated, err := svc.UpdateProfile(context.Background(), sess, "glamour", "glamour@example.com")
	require.NoError(t, err)
	assert.Equal(t, "glamour", updated.Username)

	_, err = svc.UpdateProfile(context.Background(), sess, other.Username, "fresh@example.com")
	assert.Equal(t, errors.ErrUserAlreadyExists, err)

	_, err = svc.UpdateProfile(context.Background(), sess, "glamour", "glamour@example.com")
	assert.NoError(t, err, "keeping own username and email is allowed")

	_, err = svc.UpdateProfile(context.Background(), sess, "glamour", "bad-email")
	assert.EqualError(t, err, "Invalid email address")
}

func TestUserService_ChangePassword(t *testing.T) {
	store := newMemStore()
	user := store.addUser("glam")
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	user.PasswordHash = string(hash)
	require.NoError(t, store.repos.Users.Update(context.Background(), &user))
	svc := newTestUserService(store)
	sess := session.New(user.ID, user.Username)

	err := svc.ChangePassword(context.Background(), sess, "wrong", "secret2", "secret2")
	assert.Equal(t, errors.ErrInvalidCredentials, err)

	err = svc.ChangePassword(context.Background(), sess, "secret1", "secret2", "secret3")
	assert.EqualError(t, err, "Passwords do not match")

	require.NoError(t, svc.ChangePassword(context.Background(), sess, "secret1", "secret2", "secret2"))
	stored, err := store.repos.Users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret2")))
}

func TestUserService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	user := store.addUser("glam")
	other := store.addUser("other")
	store.setBalance(user.ID, model.RewardTypePost, 4)

	own := store.addPost(user.ID, 1)
	foreign := store.addPost(other.ID, 2)
	_, _ = store.repos.Posts.AddLike(ctx, foreign.ID, user.ID)
	_ = store.repos.Posts.MarkSeen(ctx, foreign.ID, user.ID)
	require.NoError(t, store.repos.Comments.Create(ctx, &model.Comment{ID: uuid.New(), PostID: foreign.ID, UserID: user.ID, Content: "hi"}))
	require.NoError(t, store.repos.Comments.Create(ctx, &model.Comment{ID: uuid.New(), PostID: own.ID, UserID: other.ID, Content: "nice"}))

	svc := newTestUserService(store)
	require.NoError(t, svc.DeleteAccount(ctx, session.New(user.ID, user.Username)))

	_, err := store.repos.Users.FindByID(ctx, user.ID)
	assert.Error(t, err)
	_, err = store.repos.Posts.FindByID(ctx, own.ID)
	assert.Error(t, err)
	assert.Zero(t, store.balance(user.ID, model.RewardTypePost))

	remaining, err := store.repos.Posts.FindByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining.LikedBy())
	assert.Empty(t, remaining.SeenBy())
	comments, err := store.repos.Comments.ListByPost(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUserService_DeleteAccount_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	user := store.addUser("glam")
	post := store.addPost(user.ID, 1)
	store.setBalance(user.ID, model.RewardTypeLike, 2)
	store.failNext("users.Delete", stderrors.New("connection lost"))

	svc := newTestUserService(store)
	err := svc.DeleteAccount(ctx, session.New(user.ID, user.Username))

	require.Error(t, err)
	_, err = store.repos.Posts.FindByID(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), store.balance(user.ID, model.RewardTypeLike))
}
