package alloc

import (
	"io"
	"log/slog"
	"os"
)

// logEnv enables debug logging to stderr when no Logger is configured.
const logEnv = "SEGHEAP_LOG_ALLOC"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newLogger(cfg Config) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger.With("alloc", cfg.Name)
	}
	if os.Getenv(logEnv) != "" {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(h).With("alloc", cfg.Name)
	}
	return discard
}
