package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Config represents the git-utils configuration.
type Config struct {
	Picker PickerConfig `yaml:"picker"`
	Git    GitConfig    `yaml:"git"`
	Log    LogConfig    `yaml:"log"`
}

// PickerConfig holds settings for the interactive picker.
type PickerConfig struct {
	Prompt      string `yaml:"prompt"`       // Label in front of the query
	MaxRows     int    `yaml:"max_rows"`     // Cap on reserved terminal rows (0 = no cap)
	Backend     string `yaml:"backend"`      // builtin or fzf
	RecentFirst bool   `yaml:"recent_first"` // List recently checked-out branches first
}

// GitConfig holds settings for invoking git.
type GitConfig struct {
	Command string `yaml:"command"` // git command line, e.g. "git" or "git -c color.ui=never"
}

// LogConfig holds settings for the --log file.
type LogConfig struct {
	File  string `yaml:"file"`  // Log file path (overrides default)
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Picker: PickerConfig{
			Prompt:      "Branch: ",
			MaxRows:     0,
			Backend:     "builtin",
			RecentFirst: true,
		},
		Git: GitConfig{
			Command: "git",
		},
		Log: LogConfig{
			File:  "",
			Level: "info",
		},
	}
}

// Load loads the configuration from path, or from the default config file
// when path is empty. It also returns the file it read.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPaths().ConfigFile()
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFromFile loads configuration from path. A missing file yields the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to path, creating its directory.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get returns the value of a "section.key" configuration key.
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "picker":
		return c.getPickerField(field)
	case "git":
		return c.getGitField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a "section.key" configuration key from its string form.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "picker":
		return c.setPickerField(field, value)
	case "git":
		return c.setGitField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getPickerField(field string) (string, error) {
	switch field {
	case "prompt":
		return c.Picker.Prompt, nil
	case "max_rows":
		return strconv.Itoa(c.Picker.MaxRows), nil
	case "backend":
		return c.Picker.Backend, nil
	case "recent_first":
		return strconv.FormatBool(c.Picker.RecentFirst), nil
	default:
		return "", fmt.Errorf("unknown field: picker.%s", field)
	}
}

func (c *Config) setPickerField(field, value string) error {
	switch field {
	case "prompt":
		c.Picker.Prompt = value
	case "max_rows":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_rows: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid value for max_rows: %d (must be >= 0)", v)
		}
		c.Picker.MaxRows = v
	case "backend":
		if !isValidPickerBackend(value) {
			return fmt.Errorf("invalid backend: %s (must be builtin or fzf)", value)
		}
		c.Picker.Backend = value
	case "recent_first":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for recent_first: %w", err)
		}
		c.Picker.RecentFirst = v
	default:
		return fmt.Errorf("unknown field: picker.%s", field)
	}
	return nil
}

func (c *Config) getGitField(field string) (string, error) {
	switch field {
	case "command":
		return c.Git.Command, nil
	default:
		return "", fmt.Errorf("unknown field: git.%s", field)
	}
}

func (c *Config) setGitField(field, value string) error {
	switch field {
	case "command":
		if _, err := splitCommand(value); err != nil {
			return fmt.Errorf("invalid value for command: %w", err)
		}
		c.Git.Command = value
	default:
		return fmt.Errorf("unknown field: git.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "file":
		return c.Log.File, nil
	case "level":
		return c.Log.Level, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "file":
		c.Log.File = value
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Picker.MaxRows < 0 {
		return errors.New("picker.max_rows must be >= 0")
	}

	if !isValidPickerBackend(c.Picker.Backend) {
		return fmt.Errorf("picker.backend must be builtin or fzf (got: %s)", c.Picker.Backend)
	}

	if _, err := splitCommand(c.Git.Command); err != nil {
		return fmt.Errorf("git.command: %w", err)
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	return nil
}

// GitArgv splits git.command into the program and its leading arguments.
func (c *Config) GitArgv() ([]string, error) {
	return splitCommand(c.Git.Command)
}

func splitCommand(command string) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, errors.New("command is empty")
	}
	return argv, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidPickerBackend(backend string) bool {
	switch backend {
	case "builtin", "fzf":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Invalid values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GIT_UTILS_PROMPT"); v != "" {
		c.Picker.Prompt = v
	}
	if v := os.Getenv("GIT_UTILS_MAX_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Picker.MaxRows = n
		}
	}
	if v := os.Getenv("GIT_UTILS_BACKEND"); v != "" {
		if isValidPickerBackend(v) {
			c.Picker.Backend = v
		}
	}
	if v := os.Getenv("GIT_UTILS_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("GIT_UTILS_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns the user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"picker.prompt",
		"picker.max_rows",
		"picker.backend",
		"picker.recent_first",
		"git.command",
		"log.file",
		"log.level",
	}
}
