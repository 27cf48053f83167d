package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"glaminator/internal/auth"
	"glaminator/internal/errors"
	"glaminator/internal/model"
	"glaminator/internal/repository"
	"glaminator/internal/session"
)

const minPasswordLength = 6

var validate = validator.New()

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, email, password, confirmPassword string) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, sess *session.Session, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	bcryptCost int
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		bcryptCost: bcryptCost,
	}
}

func validateRegistration(username, email, password, confirmPassword string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return errors.NewValidationError("Username cannot be empty")
	case !isEmail(email):
		return errors.NewValidationError("Invalid email address")
	case len(password) < minPasswordLength:
		return errors.NewValidationError("Password must be at least 6 characters long")
	case password != confirmPassword:
		return errors.NewValidationError("Passwords do not match")
	}
	return nil
}

// ensureAvailable fails when username or email belongs to a user other than self.
func ensureAvailable(ctx context.Context, repo repository.UserRepository, self uuid.UUID, username, email string) error {
	lookups := []struct{ field, value string }{
		{repository.FieldUsername, username},
		{repository.FieldEmail, email},
	}
	for _, l := range lookups {
		existing, err := repo.FindBy(ctx, l.field, l.value)
		if err == nil && existing.ID != self {
			return errors.ErrUserAlreadyExists
		}
		if err != nil && !repository.IsNotFound(err) {
			return fmt.Errorf("check %s: %w", l.field, err)
		}
	}
	return nil
}

// Register creates a new user with a hashed password and an empty ledger.
func (s *authService) Register(ctx context.Context, username, email, password, confirmPassword string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateRegistration(username, email, password, confirmPassword); err != nil {
		return nil, err
	}

	if err := ensureAvailable(ctx, s.userRepo, uuid.Nil, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates by email when the identifier is an address, by
// username otherwise, and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, user *model.User, err error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", "", nil, errors.NewValidationError("Email or username cannot be empty")
	}
	if password == "" {
		return "", "", nil, errors.NewValidationError("Password cannot be empty")
	}

	field := repository.FieldUsername
	if isEmail(identifier) {
		field = repository.FieldEmail
	}

	user, err = s.userRepo.FindBy(ctx, field, identifier)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", "", nil, errors.ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, errors.ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID.String(), user.Username, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", errors.ErrInvalidRefreshToken
	}

	storedUserID, storedUsername, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedUsername != claims.Username {
		return "", errors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(userID, claims.Username)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the refresh token and blacklists the session's access
// token until it expires.
func (s *authService) Logout(ctx context.Context, sess *session.Session, refreshToken string) error {
	if !sess.Valid() {
		return errors.ErrNoSession
	}

	if refreshToken != "" {
		tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
		if err != nil {
			return errors.ErrInvalidRefreshToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
	}

	if ttl := auth.RemainingTTL(sess.ExpiresAt); sess.TokenID != "" && ttl > 0 {
		if err := s.tokenStore.BlacklistAccessToken(ctx, sess.TokenID, ttl); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}
