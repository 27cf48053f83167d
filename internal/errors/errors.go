package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a username or email is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when the identifier or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrNoSession is returned when an operation needing identity runs without one.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidReward is returned when a reward has an unknown type or a non-positive quantity.
	ErrInvalidReward = errors.New("invalid reward")
	// ErrInsufficientReward is returned when a spend exceeds the current balance.
	ErrInsufficientReward = errors.New("insufficient reward balance")
	// ErrPullOnCooldown is returned when a gacha pull is attempted too early.
	ErrPullOnCooldown = errors.New("pull is on cooldown")
	// ErrPostNotFound is returned when a post is not found.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrInvalidTag is returned when a post tag is unknown.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrForbidden is returned when a user modifies content they do not own.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a business-rule failure with a user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// InsufficientRewardError carries the user-facing hint for a failed spend.
type InsufficientRewardError struct {
	Message string
}

func (e *InsufficientRewardError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrInsufficientReward.
func (e *InsufficientRewardError) Unwrap() error {
	return ErrInsufficientReward
}

// CooldownError reports how long a refused pull has to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrPullOnCooldown.Error(), e.Remaining.Round(time.Second))
}

// Unwrap lets errors.Is match ErrPullOnCooldown.
func (e *CooldownError) Unwrap() error {
	return ErrPullOnCooldown
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}
	var insufficientErr *InsufficientRewardError
	if errors.As(err, &insufficientErr) {
		return NewHTTPError(http.StatusPaymentRequired, insufficientErr.Message, "INSUFFICIENT_REWARD")
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrNoSession):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "NO_SESSION")
	case errors.Is(err, ErrInvalidReward):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REWARD")
	case errors.Is(err, ErrInsufficientReward):
		return NewHTTPError(http.StatusPaymentRequired, err.Error(), "INSUFFICIENT_REWARD")
	case errors.Is(err, ErrPullOnCooldown):
		return NewHTTPError(http.StatusTooManyRequests, err.Error(), "PULL_ON_COOLDOWN")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "POST_NOT_FOUND")
	case errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "COMMENT_NOT_FOUND")
	case errors.Is(err, ErrInvalidTag):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TAG")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
