package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glaminator/internal/errors"
	"glaminator/internal/model"
	"glaminator/internal/session"
)

func TestCommentService_CreateComment(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := store.addUser("author")
	commenter := store.addUser("commenter")
	post := store.addPost(author.ID, 1)
	store.setBalance(commenter.ID, model.RewardTypeComment, 1)
	svc := NewCommentService(store.repos, newTestLedger(store))
	sess := session.New(commenter.ID, commenter.Username)

	comment, err := svc.CreateComment(ctx, sess, post.ID, "Love it")
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Zero(t, store.balance(commenter.ID, model.RewardTypeComment))

	_, err = svc.CreateComment(ctx, sess, post.ID, "Again")
	assert.EqualError(t, err, "You don't have enough comment rewards. Try a pull!")

	comments, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentService_CreateComment_Rejections(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	user := store.addUser("glam")
	store.setBalance(user.ID, model.RewardTypeComment, 3)
	post := store.addPost(user.ID, 1)
	svc := NewCommentService(store.repos, newTestLedger(store))
	sess := session.New(user.ID, user.Username)

	_, err := svc.CreateComment(ctx, sess, post.ID, "   ")
	assert.EqualError(t, err, "Comment cannot be empty")

	_, err = svc.CreateComment(ctx, sess, uuid.New(), "hello")
	assert.Equal(t, errors.ErrPostNotFound, err)

	_, err = svc.CreateComment(ctx, nil, post.ID, "hello")
	assert.Equal(t, errors.ErrNoSession, err)

	assert.Equal(t, int64(3), store.balance(user.ID, model.RewardTypeComment))
}

func TestCommentService_LikesAreFreeAndIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	user := store.addUser("glam")
	post := store.addPost(user.ID, 1)
	comment := &model.Comment{ID: uuid.New(), PostID: post.ID, UserID: user.ID, Content: "hi"}
	require.NoError(t, store.repos.Comments.Create(ctx, comment))
	svc := NewCommentService(store.repos, newTestLedger(store))
	sess := session.New(user.ID, user.Username)

	require.NoError(t, svc.LikeComment(ctx, sess, comment.ID))
	require.NoError(t, svc.LikeComment(ctx, sess, comment.ID))

	got, err := store.repos.Comments.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{user.ID}, got.LikedBy())

	require.NoError(t, svc.UnlikeComment(ctx, sess, comment.ID))
	require.NoError(t, svc.UnlikeComment(ctx, sess, comment.ID))
	assert.Equal(t, errors.ErrCommentNotFound, svc.LikeComment(ctx, sess, uuid.New()))
}

func TestCommentService_OwnerOnlyUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	author := store.addUser("author")
	intruder := store.addUser("intruder")
	post := store.addPost(author.ID, 1)
	comment := &model.Comment{ID: uuid.New(), PostID: post.ID, UserID: author.ID, Content: "first"}
	require.NoError(t, store.repos.Comments.Create(ctx, comment))
	svc := NewCommentService(store.repos, newTestLedger(store))

	_, err := svc.UpdateComment(ctx, session.New(intruder.ID, intruder.Username), comment.ID, "hijack")
	assert.Equal(t, errors.ErrForbidden, err)

	updated, err := svc.UpdateComment(ctx, session.New(author.ID, author.Username), comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.Equal(t, errors.ErrForbidden, svc.DeleteComment(ctx, session.New(intruder.ID, intruder.Username), comment.ID))
	require.NoError(t, svc.DeleteComment(ctx, session.New(author.ID, author.Username), comment.ID))

	comments, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
