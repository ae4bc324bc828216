package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"reelmate/internal/config"
	"reelmate/internal/server"
	"reelmate/pkg/database"
	"reelmate/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().WithError(err).Fatal("failed to load config")
	}

	logger.Init(cfg.LogLevel, os.Stdout)
	log := logger.Get()

	db, err := database.Connect(database.Options{
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    !cfg.IsProduction() && cfg.LogLevel == "debug",
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := server.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	log.Info("server stopped")
}
