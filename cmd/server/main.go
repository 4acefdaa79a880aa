package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/prperemyshlev/chat-auth/internal/app"
	"github.com/prperemyshlev/chat-auth/internal/config"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	infra, err := app.NewInfrastructure(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	logger := infra.Logger()

	application, err := app.NewApp(infra, cfg)
	if err != nil {
		_ = infra.Shutdown(context.Background())
		logger.Fatal("Failed to build application", zap.Error(err))
	}

	logger.Info("Starting chat-auth", zap.String("env", cfg.Env))

	if err := application.Run(ctx); err != nil {
		logger.Fatal("Application failed", zap.Error(err))
	}
}
