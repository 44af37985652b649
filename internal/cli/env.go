package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/config"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/store"
	"github.com/sadopc/planboard/internal/tasks"
)

// httpClientFunc builds the HTTP client used by assistant providers.
// Tests replace it to avoid network access.
var httpClientFunc = func(timeout time.Duration) ai.HTTPClient {
	return &http.Client{Timeout: timeout}
}

// env holds the services every command runs against.
type env struct {
	cfg        config.Config
	logger     *slog.Logger
	logFile    io.Closer
	registry   *plan.Registry
	store      *store.Store
	persistent bool
	tasks      *tasks.Store
	now        func() time.Time
}

func (o *options) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies flag overrides.
func (o *options) loadConfig() (config.Config, string, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.dataFile != "" {
		cfg.DataFile = o.dataFile
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	return cfg, path, nil
}

func newEnv(ctx context.Context, opts *options) (*env, error) {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, now: time.Now}
	e.logger, e.logFile = openLogger(cfg.LogFile, cfg.LogLevel)

	if opts.today != "" {
		today, err := plan.ParseDate(opts.today)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("invalid --today: %w", err)
		}
		e.now = func() time.Time { return today }
	}

	if cfg.DataFile != "" {
		e.registry, err = plan.LoadRegistryFile(cfg.DataFile)
	} else {
		e.registry, err = plan.DefaultRegistry()
	}
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load plans: %w", err)
	}

	e.store, e.persistent, err = store.Open(cfg.DBPath, e.logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	var backend tasks.Backend
	if cfg.Tasks.Persist {
		if err := e.store.SeedTasks(ctx, tasks.SeedTasks()); err != nil {
			e.logger.Warn("seed tasks", "err", err)
		}
		backend = e.store
	} else {
		backend = tasks.NewMemoryBackend(tasks.SeedTasks(), cfg.Tasks.Latency)
	}
	e.tasks = tasks.NewStore(backend, tasks.WithLogger(e.logger))
	return e, nil
}

// openLogger writes text logs to path. The dashboard owns the terminal, so
// when the file cannot be opened logs are discarded.
func openLogger(path, level string) (*slog.Logger, io.Closer) {
	if path == "" {
		return slog.New(slog.DiscardHandler), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return slog.New(slog.DiscardHandler), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.DiscardHandler), nil
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler), f
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// newClient builds the assistant client for the saved preferences.
func (e *env) newClient(p store.Preferences) (ai.Client, error) {
	models := ai.Models{Gemini: e.cfg.AI.GeminiModel, GPT: e.cfg.AI.GPTModel}
	return ai.NewClient(p.Provider, httpClientFunc(e.cfg.AI.RequestTimeout), p.APIKey, models, e.logger)
}

// processed classifies the actions of planID, defaulting to the first plan.
func (e *env) processed(planID string) (plan.Plan, []plan.ProcessedAction, error) {
	if planID == "" {
		plans := e.registry.Plans()
		if len(plans) == 0 {
			return plan.Plan{}, nil, fmt.Errorf("no plans configured")
		}
		planID = plans[0].ID
	}
	p, err := e.registry.Plan(planID)
	if err != nil {
		return plan.Plan{}, nil, err
	}
	actions, err := plan.Process(e.registry.Actions(p.ID), e.now())
	if err != nil {
		return plan.Plan{}, nil, fmt.Errorf("classify actions: %w", err)
	}
	return p, actions, nil
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("close database", "err", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}
