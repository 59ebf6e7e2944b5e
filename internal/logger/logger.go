package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	envLogLevel = "REDIX_LOG_LEVEL"
	envTestMode = "REDIX_TEST_MODE"
)

var defaultLogger *slog.Logger

var levels = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

func init() {
	setupLogger()
}

func setupLogger() {
	handler := slog.NewTextHandler(getLogOutput(), &slog.HandlerOptions{
		Level: getLogLevel(),
	})

	defaultLogger = slog.New(handler)
}

// Reload re-reads the environment. The CLI calls it after flags and .env
// files have been applied.
func Reload() {
	setupLogger()
}

func getLogLevel() slog.Level {
	env := getEnvWithDefault(envLogLevel, "")

	if isValidLevel(env) {
		return levels[env]
	}

	if isTestEnvironment() {
		return slog.LevelError
	}

	return slog.LevelInfo
}

func getLogOutput() io.Writer {
	if isTestEnvironment() {
		return io.Discard
	}

	return os.Stderr
}

func isTestEnvironment() bool {
	return os.Getenv(envTestMode) == "true"
}

// With returns a child logger carrying the given attributes, used by
// routers to tag every line with their topology.
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}
