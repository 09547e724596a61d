package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowsuit/flowsuit-api/internal/api"
	"github.com/flowsuit/flowsuit-api/internal/infrastructure/config"
	mongodb "github.com/flowsuit/flowsuit-api/internal/infrastructure/db/mongo"
	redisdb "github.com/flowsuit/flowsuit-api/internal/infrastructure/db/redis"
	"github.com/flowsuit/flowsuit-api/internal/infrastructure/worker"
	"github.com/flowsuit/flowsuit-api/pkg/logger"
)

// @title           FlowSuit API
// @version         1.0
// @description     Freelancer business management API: clients, proposals, projects and payment milestones.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	if err := mongodb.EnsureAllIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	if cfg.DevFallbackEnabled() {
		log.Warn().Str("owner_id", cfg.DevOwnerID).Msg("dev owner fallback enabled; unauthenticated requests act as this user")
	}

	sweeper := worker.NewOverdueSweeper(mongodb.NewMilestoneRepository(db), time.Hour, log)
	sweeper.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting flowsuit api")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
