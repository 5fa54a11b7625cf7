// Package logger is the pipeline's logging surface: slog with a text
// handler, debug level driven by the loaded config rather than ambient
// environment reads.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var Logger = slog.Default()

// Init configures the process logger. debug comes from the config struct
// so the level is decided in one place alongside every other setting.
func Init(debug bool) {
	Logger = New(os.Stdout, debug)
	slog.SetDefault(Logger)
}

// New builds a text-handler logger on w. Split out from Init so tests can
// capture output.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
