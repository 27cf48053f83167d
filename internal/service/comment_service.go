package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"glaminator/internal/errors"
	"glaminator/internal/model"
	"glaminator/internal/repository"
	"glaminator/internal/session"
)

// CommentService handles comments on posts.
type CommentService interface {
	CreateComment(ctx context.Context, sess *session.Session, postID uuid.UUID, content string) (*model.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	UpdateComment(ctx context.Context, sess *session.Session, id uuid.UUID, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, sess *session.Session, id uuid.UUID) error
	LikeComment(ctx context.Context, sess *session.Session, id uuid.UUID) error
	UnlikeComment(ctx context.Context, sess *session.Session, id uuid.UUID) error
}

type commentService struct {
	repos  *repository.Repositories
	ledger LedgerService
}

// NewCommentService creates a comment service.
func NewCommentService(repos *repository.Repositories, ledger LedgerService) CommentService {
	return &commentService{repos: repos, ledger: ledger}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.NewValidationError("Comment cannot be empty")
	}
	return nil
}

// CreateComment adds a comment to the post, charging one COMMENT token.
func (s *commentService) CreateComment(ctx context.Context, sess *session.Session, postID uuid.UUID, content string) (*model.Comment, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:      uuid.New(),
		PostID:  postID,
		UserID:  sess.UserID,
		Content: content,
	}
	err := s.ledger.Spend(ctx, sess, model.RewardTypeComment, commentCost, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.Comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the post's comments, oldest first.
func (s *commentService) ListComments(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) UpdateComment(ctx context.Context, sess *session.Session, id uuid.UUID, content string) (*model.Comment, error) {
	comment, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	if err := s.repos.Comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// LikeComment is free and idempotent.
func (s *commentService) LikeComment(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if _, err := s.repos.Comments.AddLike(ctx, id, sess.UserID); err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (s *commentService) UnlikeComment(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if _, err := s.repos.Comments.RemoveLike(ctx, id, sess.UserID); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

func (s *commentService) postExists(ctx context.Context, postID uuid.UUID) error {
	if _, err := s.repos.Posts.FindByID(ctx, postID); err != nil {
		if repository.IsNotFound(err) {
			return errors.ErrPostNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}
	return nil
}

func (s *commentService) find(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	comment, err := s.repos.Comments.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) owned(ctx context.Context, sess *session.Session, id uuid.UUID) (*model.Comment, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	comment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != sess.UserID {
		return nil, errors.ErrForbidden
	}
	return comment, nil
}
