// Package logging builds the JSON-lines structured logger used by git-utils.
//
// Log lines look like:
//
//	{"ts":"2026-01-15T10:30:00Z","level":"DEBUG","msg":"git command","run_id":"…","args":["switch","main"]}
//
// Logging is off unless --log is given; the logger then writes to the log
// file from the config or the default state directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: io.Discard)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: io.Discard,
		Level:  slog.LevelInfo,
	}
}

// New creates a JSON-lines logger.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = io.Discard
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(output, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return New(DefaultConfig())
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// OpenFile opens path for appending, creating its directory, and returns a
// logger writing to it. Every logger gets a fresh run_id so lines from one
// invocation can be grouped. The returned closer closes the file.
func OpenFile(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := New(&Config{Output: f, Level: level}).With("run_id", uuid.NewString())
	return logger, f, nil
}

// InvocationInfo describes one command invocation.
type InvocationInfo struct {
	Version    string
	Command    string
	WorkDir    string
	ConfigPath string
	PID        int
}

// LogInvocation records the start of a command.
func LogInvocation(logger *slog.Logger, info InvocationInfo) {
	logger.Info("command started",
		"version", info.Version,
		"command", info.Command,
		"work_dir", info.WorkDir,
		"config_path", info.ConfigPath,
		"pid", info.PID,
	)
}

// LogOutcome records how a command ended.
func LogOutcome(logger *slog.Logger, command string, err error) {
	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		return
	}
	logger.Info("command finished", "command", command)
}
