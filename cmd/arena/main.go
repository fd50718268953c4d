package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codegrid/arena/internal/api/admin"
	"github.com/codegrid/arena/internal/api/user"
	"github.com/codegrid/arena/internal/config"
	"github.com/codegrid/arena/internal/contest"
	"github.com/codegrid/arena/internal/database"
	"github.com/codegrid/arena/internal/judge"
	"github.com/codegrid/arena/internal/pubsub"

	"go.uber.org/zap"
)

var Version = "dev-build"

func main() {

	fmt.Fprintf(os.Stderr, "Arena %s - Contest Scoring & Leaderboard Engine\n\n", Version)

	// config
	var configPath string
	flag.StringVar(&configPath, "c", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// logger
	var logger *zap.Logger
	if cfg.Logger.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// database
	db, err := database.Init(cfg.Storage.Database)
	if err != nil {
		zap.S().Fatalf("failed to initialize database: %v", err)
	}
	zap.S().Info("database initialized successfully")

	// realtime broker and judge client
	broker := pubsub.NewBroker()
	judgeClient := judge.NewClient(cfg.Judge)

	// contest service: submission gateway, judging workers, finalizer
	service := contest.NewService(cfg, db, judgeClient, broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go service.Run(ctx)
	go service.RunFinalizer(ctx)
	zap.S().Info("judging workers and finalization sweep started")

	// API routers
	userEngine := user.NewUserRouter(cfg, db, service, broker)
	adminEngine := admin.NewAdminRouter(cfg, db, service)

	// start servers
	go func() {
		zap.S().Infof("starting user server at %s", cfg.Listen)
		if err := userEngine.Run(cfg.Listen); err != nil {
			zap.S().Fatalf("failed to start user server: %v", err)
		}
	}()

	if cfg.Admin.Enabled {
		go func() {
			zap.S().Infof("starting admin server at %s", cfg.Admin.Listen)
			if err := adminEngine.Run(cfg.Admin.Listen); err != nil {
				zap.S().Fatalf("failed to start admin server: %v", err)
			}
		}()
	}

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")
}
