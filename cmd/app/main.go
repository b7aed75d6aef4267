package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wichananm65/football-storefront/internal/config"
	"github.com/wichananm65/football-storefront/internal/logging"
	"github.com/wichananm65/football-storefront/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := srv.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := srv.Listen(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
