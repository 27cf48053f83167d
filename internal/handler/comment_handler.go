package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"glaminator/internal/model"
	"glaminator/internal/service"
)

// CommentHandler serves comments on posts.
type CommentHandler struct {
	svc service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// CommentRequest carries the text of a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID        uuid.UUID   `json:"id"`
	PostID    uuid.UUID   `json:"post_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Content   string      `json:"content"`
	LikedBy   []uuid.UUID `json:"liked_by"`
	Timestamp int64       `json:"timestamp"`
}

func newCommentResponse(cm *model.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		UserID:    cm.UserID,
		Content:   cm.Content,
		LikedBy:   cm.LikedBy(),
		Timestamp: cm.Timestamp,
	}
}

// List godoc
// @Summary Comments of a post, oldest first
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} CommentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	postID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.svc.ListComments(c.Request().Context(), postID)
	if err != nil {
		return respondError(err)
	}
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, newCommentResponse(&comments[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary Comment on a post
// @Description Costs one COMMENT reward.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	postID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	comment, err := h.svc.CreateComment(c.Request().Context(), currentSession(c), postID, req.Content)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// Update godoc
// @Summary Edit own comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body CommentRequest true "Comment"
// @Success 200 {object} CommentResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	comment, err := h.svc.UpdateComment(c.Request().Context(), currentSession(c), id, req.Content)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newCommentResponse(comment))
}

// Delete godoc
// @Summary Delete own comment
// @Tags comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteComment(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Like godoc
// @Summary Like a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id}/like [post]
func (h *CommentHandler) Like(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.LikeComment(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: true})
}

// Unlike godoc
// @Summary Remove a comment like
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id}/like [delete]
func (h *CommentHandler) Unlike(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.UnlikeComment(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: false})
}
