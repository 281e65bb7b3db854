// Command agora-devapi serves a local forum API for development and demos.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/config"
	"agora/internal/devapi"
	"agora/internal/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := observability.InitLogging(observability.LogConfig{Format: cfg.LogFormat, Level: cfg.LogLevel})

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "agora-devapi",
		ServiceVersion: "dev",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := devapi.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	seeded, err := devapi.Seed(context.Background(), db, devapi.SeedOptions{
		Users:           5,
		Posts:           cfg.DevAPISeedPosts,
		CommentsPerPost: 4,
		Messages:        6,
	})
	if err != nil {
		logger.Error("failed to seed database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, u := range seeded.Users {
		logger.Info("seeded account", slog.String("username", u.Username), slog.String("password", devapi.SeedPassword))
	}

	app := devapi.NewServer(cfg, db).App()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	logger.Info("server starting", slog.String("port", cfg.DevAPIPort))
	if err := app.Listen(":" + cfg.DevAPIPort); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
