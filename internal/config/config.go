// Package config loads planboard's YAML configuration file.
//
// User preferences (theme, sidebar, AI provider and key) are not stored
// here; they live in the settings table of the database.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory under the user config dir that holds all state.
	AppDir = "planboard"

	configFile = "config.yaml"
	dbFile     = "planboard.db"
	logFile    = "planboard.log"
)

// AIConfig selects provider models and the per-request timeout.
// A zero timeout means requests are bounded only by cancellation.
type AIConfig struct {
	GeminiModel    string        `yaml:"gemini_model"`
	GPTModel       string        `yaml:"gpt_model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// TasksConfig tunes the sub-task backend.
type TasksConfig struct {
	// Latency delays every backend call, to exercise loading states.
	Latency time.Duration `yaml:"latency"`
	// Persist stores sub-tasks in the database instead of process memory.
	Persist bool `yaml:"persist"`
}

// Config models config.yaml.
type Config struct {
	DBPath   string      `yaml:"db_path"`
	DataFile string      `yaml:"data_file,omitempty"`
	LogFile  string      `yaml:"log_file"`
	LogLevel string      `yaml:"log_level"`
	AI       AIConfig    `yaml:"ai"`
	Tasks    TasksConfig `yaml:"tasks"`
}

// Dir returns ~/.config/planboard.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config dir: %w", err)
	}
	return filepath.Join(base, AppDir), nil
}

// DefaultPath returns ~/.config/planboard/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		LogLevel: "info",
		AI: AIConfig{
			GeminiModel: "gemini-pro",
			GPTModel:    "gpt-3.5-turbo",
		},
		Tasks: TasksConfig{Persist: true},
	}
	if dir, err := Dir(); err == nil {
		cfg.DBPath = filepath.Join(dir, dbFile)
		cfg.LogFile = filepath.Join(dir, logFile)
	}
	return cfg
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.normalize(filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// normalize trims values and resolves relative paths against base.
func (c *Config) normalize(base string) {
	def := Default()
	c.DBPath = resolve(base, strings.TrimSpace(c.DBPath))
	c.DataFile = resolve(base, strings.TrimSpace(c.DataFile))
	c.LogFile = resolve(base, strings.TrimSpace(c.LogFile))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	c.AI.GeminiModel = strings.TrimSpace(c.AI.GeminiModel)
	if c.AI.GeminiModel == "" {
		c.AI.GeminiModel = def.AI.GeminiModel
	}
	c.AI.GPTModel = strings.TrimSpace(c.AI.GPTModel)
	if c.AI.GPTModel == "" {
		c.AI.GPTModel = def.AI.GPTModel
	}
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.AI.RequestTimeout < 0 {
		return fmt.Errorf("ai.request_timeout must not be negative")
	}
	if c.Tasks.Latency < 0 {
		return fmt.Errorf("tasks.latency must not be negative")
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(base, p)
}
