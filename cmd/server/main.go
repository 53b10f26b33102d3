package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/minesweeper-host/internal/app"
	"github.com/vancomm/minesweeper-host/internal/config"
	"github.com/vancomm/minesweeper-host/internal/mines"
)

func main() {
	logger := config.NewLogger()

	if err := config.SetupEngineLog(mines.Log); err != nil {
		logger.Error("failed to set up engine log", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	a, err := app.New(logger)
	if err != nil {
		logger.Error("failed to configure server", slog.Any("error", err))
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
