package main

import (
	"context"
	"flag"
	"os"

	"glaminator/internal/config"
	"glaminator/internal/db"
	"glaminator/internal/logger"
	"glaminator/internal/repository"
	"glaminator/internal/service"
)

func main() {
	source := flag.String("source", os.Getenv("SEED_SOURCE"), "seed dataset file path or http(s) URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	if *source == "" {
		log.Fatal("no dataset given, pass -source or set SEED_SOURCE")
	}

	ctx := context.Background()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	log.Info("connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(ctx, gormDB, log, cfg.ResetDB); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	log.Info("loading dataset", "source", *source)
	ds, err := service.LoadDataset(ctx, *source)
	if err != nil {
		log.Fatal("failed to load dataset", "error", err)
	}
	log.Info("dataset loaded", "users", len(ds.Users), "posts", len(ds.Posts))

	seeder := service.NewSeedService(repository.New(gormDB), cfg.BcryptCost, log)
	report, err := seeder.Seed(ctx, ds)
	if err != nil {
		log.Fatal("failed to seed", "error", err)
	}

	log.Info("seed completed",
		"users_created", report.UsersCreated,
		"users_updated", report.UsersUpdated,
		"posts_created", report.PostsCreated,
		"posts_updated", report.PostsUpdated,
		"skipped", report.Skipped,
	)
}
