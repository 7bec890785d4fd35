package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// L is the global logger instance. It discards all output until Init is called.
var L = slog.New(slog.DiscardHandler)

var logFile *os.File

// Options configures the logger initialization.
type Options struct {
	Verbose bool       // Log at debug level instead of warn
	LogFile string     // If set, write JSON records to this file instead of stderr
	Level   slog.Level // Overrides the level chosen by Verbose when non-zero
	Stderr  io.Writer  // Destination for text logs. Default: os.Stderr
}

// Init configures logging. Call from the root command before any log calls.
func Init(opts Options) error {
	if err := Close(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Level != 0 {
		level = opts.Level
	}
	ho := &slog.HandlerOptions{Level: level}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = f
		L = slog.New(slog.NewJSONHandler(f, ho))
		return nil
	}

	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	L = slog.New(slog.NewTextHandler(w, ho))
	return nil
}

// Close releases the log file, if any, and resets L to discard.
func Close() error {
	L = slog.New(slog.DiscardHandler)
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
