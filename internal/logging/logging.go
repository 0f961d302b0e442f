package logging

import (
	"log/slog"
	"os"
)

// New returns a slog.Logger tuned by environment: prod gets JSON logs at
// INFO, everything else text logs at the level named in LOG_LEVEL.
func New(env string) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelFromEnv()}))
}

// Init installs the environment-tuned logger as the slog default.
func Init(env string) {
	slog.SetDefault(New(env))
}

func levelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "production", "prod":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
