package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"glaminator/internal/model"
	"glaminator/internal/service"
)

// PostHandler serves the feed and post reactions.
type PostHandler struct {
	svc service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(svc service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// PostRequest carries the editable fields of a post.
type PostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"image_urls"`
	Tags      []string `json:"tags"`
}

func (r PostRequest) input() service.PostInput {
	return service.PostInput{
		Title:     r.Title,
		Content:   r.Content,
		ImageURLs: r.ImageURLs,
		Tags:      r.Tags,
	}
}

// PostResponse is the public view of a post.
type PostResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	ImageURLs []string        `json:"image_urls"`
	Tags      []model.PostTag `json:"tags"`
	LikedBy   []uuid.UUID     `json:"liked_by"`
	SeenBy    []uuid.UUID     `json:"seen_by"`
	LikeCount int             `json:"like_count"`
	Timestamp int64           `json:"timestamp"`
}

// LikeResponse reports the like state after a toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
}

func newPostResponse(p *model.Post) PostResponse {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	likedBy := p.LikedBy()
	return PostResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURLs: images,
		Tags:      p.TagNames(),
		LikedBy:   likedBy,
		SeenBy:    p.SeenBy(),
		LikeCount: len(likedBy),
		Timestamp: p.Timestamp,
	}
}

func newPostResponses(posts []model.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, newPostResponse(&posts[i]))
	}
	return out
}

// splitTags accepts both ?tags=a,b and repeated ?tags=a&tags=b.
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// List godoc
// @Summary Feed, newest first
// @Description Without tags returns every post. With tags returns posts carrying all of them.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param tags query string false "Comma separated tags"
// @Success 200 {array} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		posts []model.Post
		err   error
	)
	if tags := splitTags(c.QueryParams()["tags"]); len(tags) > 0 {
		posts, err = h.svc.SearchByTags(ctx, tags)
	} else {
		posts, err = h.svc.ListFeed(ctx)
	}
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newPostResponses(posts))
}

// Unseen godoc
// @Summary Posts the caller has not seen yet
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PostResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts/unseen [get]
func (h *PostHandler) Unseen(c echo.Context) error {
	posts, err := h.svc.ListUnseen(c.Request().Context(), currentSession(c))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newPostResponses(posts))
}

// ListByUser godoc
// @Summary Posts of one user
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id}/posts [get]
func (h *PostHandler) ListByUser(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	posts, err := h.svc.ListByUser(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newPostResponses(posts))
}

// Get godoc
// @Summary Get post by id
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	post, err := h.svc.GetPost(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newPostResponse(post))
}

// Create godoc
// @Summary Publish a post
// @Description Costs one POST reward.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PostRequest true "Post"
// @Success 201 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req PostRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	post, err := h.svc.CreatePost(c.Request().Context(), currentSession(c), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, newPostResponse(post))
}

// Update godoc
// @Summary Edit own post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body PostRequest true "Post"
// @Success 200 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req PostRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	post, err := h.svc.UpdatePost(c.Request().Context(), currentSession(c), id, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, newPostResponse(post))
}

// Delete godoc
// @Summary Delete own post
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePost(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Like godoc
// @Summary Like a post
// @Description Costs one LIKE reward. Liking twice is a no-op.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/like [post]
func (h *PostHandler) Like(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.LikePost(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: true})
}

// Unlike godoc
// @Summary Remove a like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/like [delete]
func (h *PostHandler) Unlike(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.UnlikePost(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: false})
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/like/toggle [post]
func (h *PostHandler) ToggleLike(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	liked, err := h.svc.TogglePostLike(c.Request().Context(), currentSession(c), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, LikeResponse{Liked: liked})
}

// MarkSeen godoc
// @Summary Mark a post as seen
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/seen [post]
func (h *PostHandler) MarkSeen(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.MarkSeen(c.Request().Context(), currentSession(c), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
