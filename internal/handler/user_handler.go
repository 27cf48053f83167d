package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"glaminator/internal/model"
	"glaminator/internal/service"
)

// UserHandler serves profiles and account management.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UserResponse is the public view of a user. Every currency is listed.
type UserResponse struct {
	ID        uuid.UUID                  `json:"id"`
	Username  string                     `json:"username"`
	Email     string                     `json:"email"`
	Rewards   map[model.RewardType]int64 `json:"rewards"`
	CreatedAt time.Time                  `json:"created_at"`
}

func newUserResponse(u *model.User) *UserResponse {
	if u == nil {
		return nil
	}
	rewards := make(map[model.RewardType]int64, len(model.RewardTypes))
	for _, t := range model.RewardTypes {
		rewards[t] = u.Balance(t)
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Rewards:   rewards,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateProfileRequest changes the caller's username and email.
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.svc.Me(c.Request().Context(), currentSession(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateMe godoc
// @Summary Update username and email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateProfile(c.Request().Context(), currentSession(c), req.Username, req.Email)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	err := h.svc.ChangePassword(c.Request().Context(), currentSession(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// DeleteMe godoc
// @Summary Delete account
// @Description Deletes the caller with their posts, comments, likes and rewards.
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	if err := h.svc.DeleteAccount(c.Request().Context(), currentSession(c)); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
