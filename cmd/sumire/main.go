package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sglre6355/sumire/internal/bot"
	_ "github.com/sglre6355/sumire/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/sumire
var version = "dev"

func main() {
	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Configure JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	slog.Info("starting sumire", "version", version)

	// Create and configure bot
	b := bot.NewBot(cfg)
	b.LoadModules()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		shutdown(b, cfg)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("received termination signal, shutting down")
	shutdown(b, cfg)

	slog.Info("completed bot shutdown")
}

func shutdown(b *bot.Bot, cfg *bot.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := b.Stop(ctx); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}
}
