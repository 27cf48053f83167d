package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"glaminator/internal/auth"
	"glaminator/internal/handler"
	"glaminator/internal/logger"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Reward  *handler.RewardHandler
	Post    *handler.PostHandler
	Comment *handler.CommentHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	log *logger.Logger,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	// Secured routes (require a bearer access token)
	secured := api.Group("", handler.Authenticate(jwtService, tokenStore))

	secured.POST("/auth/logout", h.Auth.Logout)

	secured.GET("/me", h.User.Me)
	secured.PUT("/me", h.User.UpdateMe)
	secured.PUT("/me/password", h.User.ChangePassword)
	secured.DELETE("/me", h.User.DeleteMe)
	secured.GET("/users/:id", h.User.GetUser)
	secured.GET("/users/:id/posts", h.Post.ListByUser)

	// Reward routes
	secured.GET("/rewards", h.Reward.GetBalances)
	secured.POST("/rewards/pull", h.Reward.Pull)
	secured.GET("/rewards/pull", h.Reward.PullStatus)
	secured.GET("/rewards/history", h.Reward.History)

	// Post routes
	posts := secured.Group("/posts")
	posts.GET("", h.Post.List)
	posts.POST("", h.Post.Create)
	posts.GET("/unseen", h.Post.Unseen)
	posts.GET("/:id", h.Post.Get)
	posts.PUT("/:id", h.Post.Update)
	posts.DELETE("/:id", h.Post.Delete)
	posts.POST("/:id/like", h.Post.Like)
	posts.DELETE("/:id/like", h.Post.Unlike)
	posts.POST("/:id/like/toggle", h.Post.ToggleLike)
	posts.POST("/:id/seen", h.Post.MarkSeen)
	posts.GET("/:id/comments", h.Comment.List)
	posts.POST("/:id/comments", h.Comment.Create)

	// Comment routes
	comments := secured.Group("/comments")
	comments.PUT("/:id", h.Comment.Update)
	comments.DELETE("/:id", h.Comment.Delete)
	comments.POST("/:id/like", h.Comment.Like)
	comments.DELETE("/:id/like", h.Comment.Unlike)
}

// requestLogger writes one structured record per request.
func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String("id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
