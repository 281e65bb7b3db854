// Command agora is the terminal front-end of the forum.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agora/internal/cli"
	"agora/internal/config"
	"agora/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger := observability.InitLogging(observability.LogConfig{Format: cfg.LogFormat, Level: cfg.CLILogLevel})

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "agora",
		ServiceVersion: "dev",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracing: %v\n", err)
		return 1
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	app, err := cli.Bootstrap(ctx, cfg, logger.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer app.Close()

	return cli.Execute(ctx, cli.NewRootCmd(app), app)
}
