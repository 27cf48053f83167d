package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"glaminator/internal/errors"
	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/repository"
	"glaminator/internal/session"
)

// Token prices of paid actions.
const (
	postCost    = 1
	likeCost    = 1
	commentCost = 1
)

// errAlreadyLiked rolls back a like spend that lost a race with a
// concurrent like by the same user.
var errAlreadyLiked = stderrors.New("already liked")

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title     string
	Content   string
	ImageURLs []string
	Tags      []string
}

// PostService handles publishing, browsing and reacting to posts.
type PostService interface {
	CreatePost(ctx context.Context, sess *session.Session, in PostInput) (*model.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error)
	ListFeed(ctx context.Context) ([]model.Post, error)
	ListUnseen(ctx context.Context, sess *session.Session) ([]model.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Post, error)
	SearchByTags(ctx context.Context, tags []string) ([]model.Post, error)
	UpdatePost(ctx context.Context, sess *session.Session, id uuid.UUID, in PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, sess *session.Session, id uuid.UUID) error
	LikePost(ctx context.Context, sess *session.Session, id uuid.UUID) error
	UnlikePost(ctx context.Context, sess *session.Session, id uuid.UUID) error
	TogglePostLike(ctx context.Context, sess *session.Session, id uuid.UUID) (liked bool, err error)
	MarkSeen(ctx context.Context, sess *session.Session, id uuid.UUID) error
}

type postService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	ledger LedgerService
	log    *logger.Logger
}

// NewPostService creates a post service. Multi-statement writes run
// through tx and paid actions are charged through ledger.
func NewPostService(repos *repository.Repositories, tx repository.Transactor, ledger LedgerService, log *logger.Logger) PostService {
	return &postService{repos: repos, tx: tx, ledger: ledger, log: log}
}

// ParseTags converts tag names to PostTags, dropping duplicates.
func ParseTags(names []string) ([]model.PostTag, error) {
	tags := make([]model.PostTag, 0, len(names))
	seen := make(map[model.PostTag]bool, len(names))
	for _, name := range names {
		tag, err := model.ParsePostTag(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errors.ErrInvalidTag, name)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, nil
}

func (in PostInput) validate() ([]model.PostTag, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.NewValidationError("Title cannot be empty")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, errors.NewValidationError("Content cannot be empty")
	}
	return ParseTags(in.Tags)
}

func tagLinks(postID uuid.UUID, tags []model.PostTag) []model.PostTagLink {
	links := make([]model.PostTagLink, 0, len(tags))
	for _, t := range tags {
		links = append(links, model.PostTagLink{PostID: postID, Tag: t})
	}
	return links
}

// CreatePost publishes a post, charging one POST token.
func (s *postService) CreatePost(ctx context.Context, sess *session.Session, in PostInput) (*model.Post, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	tags, err := in.validate()
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        uuid.New(),
		UserID:    sess.UserID,
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		ImageURLs: in.ImageURLs,
	}
	post.Tags = tagLinks(post.ID, tags)

	err = s.ledger.Spend(ctx, sess, model.RewardTypePost, postCost, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.Posts.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("post created", "post_id", post.ID, "user_id", sess.UserID)
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := s.repos.Posts.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

func (s *postService) ListFeed(ctx context.Context) ([]model.Post, error) {
	return s.list(ctx, repository.PostFilter{})
}

// ListUnseen returns the posts the session user has not marked seen.
func (s *postService) ListUnseen(ctx context.Context, sess *session.Session) ([]model.Post, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	return s.list(ctx, repository.PostFilter{UnseenBy: sess.UserID})
}

func (s *postService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Post, error) {
	return s.list(ctx, repository.PostFilter{AuthorID: userID})
}

// SearchByTags returns posts carrying every requested tag. No tags means
// every post.
func (s *postService) SearchByTags(ctx context.Context, names []string) ([]model.Post, error) {
	tags, err := ParseTags(names)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, repository.PostFilter{AllTags: tags})
}

func (s *postService) list(ctx context.Context, filter repository.PostFilter) ([]model.Post, error) {
	posts, err := s.repos.Posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// owned loads the post and checks the session user wrote it.
func (s *postService) owned(ctx context.Context, sess *session.Session, id uuid.UUID) (*model.Post, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != sess.UserID {
		return nil, errors.ErrForbidden
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, sess *session.Session, id uuid.UUID, in PostInput) (*model.Post, error) {
	post, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	tags, err := in.validate()
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	post.ImageURLs = in.ImageURLs
	post.Tags = tagLinks(post.ID, tags)

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.Posts.Update(ctx, post)
	})
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.Posts.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// LikePost likes the post, charging one LIKE token. Liking twice is a no-op.
func (s *postService) LikePost(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}

	liked, err := s.repos.Posts.HasLike(ctx, id, sess.UserID)
	if err != nil {
		return fmt.Errorf("check like: %w", err)
	}
	if liked {
		return nil
	}

	err = s.ledger.Spend(ctx, sess, model.RewardTypeLike, likeCost, func(ctx context.Context, repos *repository.Repositories) error {
		added, err := repos.Posts.AddLike(ctx, id, sess.UserID)
		if err != nil {
			return err
		}
		if !added {
			return errAlreadyLiked
		}
		return nil
	})
	if stderrors.Is(err, errAlreadyLiked) {
		return nil
	}
	return err
}

// UnlikePost removes the like for free. Unliking a post that was not
// liked is a no-op.
func (s *postService) UnlikePost(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}
	if _, err := s.repos.Posts.RemoveLike(ctx, id, sess.UserID); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

func (s *postService) TogglePostLike(ctx context.Context, sess *session.Session, id uuid.UUID) (bool, error) {
	if !sess.Valid() {
		return false, errors.ErrNoSession
	}
	liked, err := s.repos.Posts.HasLike(ctx, id, sess.UserID)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	if liked {
		return false, s.UnlikePost(ctx, sess, id)
	}
	return true, s.LikePost(ctx, sess, id)
}

func (s *postService) MarkSeen(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}
	if err := s.repos.Posts.MarkSeen(ctx, id, sess.UserID); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}
