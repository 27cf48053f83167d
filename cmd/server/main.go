package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"glaminator/docs" // swagger docs
	"glaminator/internal/auth"
	"glaminator/internal/cache"
	"glaminator/internal/config"
	"glaminator/internal/db"
	"glaminator/internal/gacha"
	"glaminator/internal/handler"
	"glaminator/internal/logger"
	"glaminator/internal/prefs"
	"glaminator/internal/repository"
	"glaminator/internal/router"
	"glaminator/internal/service"
)

// @title Glaminator API
// @version 1.0
// @description Social feed where posting, liking and commenting spend rewards won from gacha pulls.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("database init", "error", err)
	}
	if err := db.Migrate(ctx, gormDB, log, cfg.ResetDB); err != nil {
		log.Fatal("auto-migrate", "error", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unreachable, running without cache", "addr", cfg.RedisAddr, "error", err)
	}

	prefStore, err := prefs.Open(ctx, cfg.Prefs.Path)
	if err != nil {
		log.Fatal("open preferences", "path", cfg.Prefs.Path, "error", err)
	}
	defer prefStore.Close()

	repos := repository.New(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	ledger := service.NewLedgerService(repos, repos, cacheClient, cfg.Ledger, log)
	pulls := service.NewPullService(gacha.NewEngine(nil), gacha.NewCooldown(prefStore, cfg.Pull.Cooldown), ledger, log)
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore, cfg.BcryptCost)
	userService := service.NewUserService(repos, repos, cacheClient, cfg.UserCacheTTL, cfg.BcryptCost, log)
	postService := service.NewPostService(repos, repos, ledger, log)
	commentService := service.NewCommentService(repos, ledger)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, log, jwtService, tokenStore, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userService),
		Reward:  handler.NewRewardHandler(ledger, pulls),
		Post:    handler.NewPostHandler(postService),
		Comment: handler.NewCommentHandler(commentService),
	})

	swaggerURL := "http://localhost:5000/swagger/index.html"
	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
		swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
		if host == cfg.SwaggerHost {
			swaggerURL = "http://" + swaggerURL
		}
	}
	log.Info("swagger documentation available", "url", swaggerURL)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
}
