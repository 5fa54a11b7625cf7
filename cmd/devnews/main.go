package main

import (
	"context"
	"os"

	"github.com/queensdev/devnews/internal/app"
	"github.com/queensdev/devnews/internal/config"
	"github.com/queensdev/devnews/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	// Last line of defense: a panic from anywhere past this point still
	// leaves a well-formed artifact behind.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "panic", r)
			app.Failsafe(cfg)
			os.Exit(1)
		}
	}()

	arg := ""
	if len(os.Args) > 1 {
		arg = os.Args[1]
	}
	mode := app.ParseMode(arg)

	a, err := app.New(cfg)
	if err != nil {
		// Configuration is unreadable; still leave a valid artifact behind.
		logger.Error("run failed before start", "error", err)
		app.Failsafe(cfg)
		os.Exit(1)
	}

	if err := a.Run(context.Background(), mode); err != nil {
		logger.Error("run failed", "error", err)
		app.Failsafe(cfg)
		os.Exit(1)
	}
}
