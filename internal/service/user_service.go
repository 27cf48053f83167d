package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"glaminator/internal/cache"
	"glaminator/internal/errors"
	"glaminator/internal/logger"
	"glaminator/internal/model"
	"glaminator/internal/repository"
	"glaminator/internal/session"
)

// UserService exposes profile and account operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	Me(ctx context.Context, sess *session.Session) (*model.User, error)
	UpdateProfile(ctx context.Context, sess *session.Session, username, email string) (*model.User, error)
	ChangePassword(ctx context.Context, sess *session.Session, currentPassword, newPassword, confirmPassword string) error
	DeleteAccount(ctx context.Context, sess *session.Session) error
}

type userService struct {
	repos      *repository.Repositories
	tx         repository.Transactor
	cache      *cache.Client
	ttl        time.Duration
	bcryptCost int
	log        *logger.Logger
}

// NewUserService builds a UserService with repositories and a profile cache.
func NewUserService(repos *repository.Repositories, tx repository.Transactor, cache *cache.Client, ttl time.Duration, bcryptCost int, log *logger.Logger) UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		repos:      repos,
		tx:         tx,
		cache:      cache,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

func userCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	_ = s.cache.SetJSON(ctx, userCacheKey(id), user, s.ttl)
	return user, nil
}

func (s *userService) Me(ctx context.Context, sess *session.Session) (*model.User, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	return s.GetUser(ctx, sess.UserID)
}

// UpdateProfile changes username and email, keeping both unique.
func (s *userService) UpdateProfile(ctx context.Context, sess *session.Session, username, email string) (*model.User, error) {
	if !sess.Valid() {
		return nil, errors.ErrNoSession
	}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, errors.NewValidationError("Username cannot be empty")
	}
	if !isEmail(email) {
		return nil, errors.NewValidationError("Invalid email address")
	}

	user, err := s.findUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if err := ensureAvailable(ctx, s.repos.Users, user.ID, username, email); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	if err := s.repos.Users.Update(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, sess *session.Session, currentPassword, newPassword, confirmPassword string) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}
	if len(newPassword) < minPasswordLength {
		return errors.NewValidationError("Password must be at least 6 characters long")
	}
	if newPassword != confirmPassword {
		return errors.NewValidationError("Passwords do not match")
	}

	user, err := s.findUser(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return errors.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteAccount removes the user together with their posts, comments,
// likes, views, ledger and grant history. Nothing is removed if any step
// fails.
func (s *userService) DeleteAccount(ctx context.Context, sess *session.Session) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Users.FindByID(ctx, sess.UserID); err != nil {
			if repository.IsNotFound(err) {
				return errors.ErrUserNotFound
			}
			return fmt.Errorf("find user: %w", err)
		}

		steps := []struct {
			name string
			run  func(context.Context, uuid.UUID) error
		}{
			{"delete posts", repos.Posts.DeleteByUser},
			{"delete comments", repos.Comments.DeleteByUser},
			{"delete activity", repos.Posts.RemoveUserActivity},
			{"delete rewards", repos.Rewards.DeleteByUser},
			{"delete user", repos.Users.Delete},
		}
		for _, step := range steps {
			if err := step.run(ctx, sess.UserID); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, userCacheKey(sess.UserID))
	s.log.Info("account deleted", "user_id", sess.UserID)
	return nil
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
