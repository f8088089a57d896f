// Package app wires configuration, storage, the lexical engine and the
// network adapters into the commands the CLI runs.
package app

import (
	"fmt"
	"log/slog"

	"github.com/corey/goodadvice/internal/adapters/anthropic"
	"github.com/corey/goodadvice/internal/adapters/bbolt"
	fsw "github.com/corey/goodadvice/internal/adapters/fsnotify"
	"github.com/corey/goodadvice/internal/adapters/newsdata"
	"github.com/corey/goodadvice/internal/adapters/sqlite"
	"github.com/corey/goodadvice/internal/config"
	"github.com/corey/goodadvice/internal/ports"
)

// App owns the long-lived resources of one advise process.
type App struct {
	Config *config.Config
	Log    *slog.Logger
	Paths  *Paths
	Store  ports.ReportStore
	Engine *Engine

	watcher ports.Watcher
}

// New opens the report store, builds the engine and, when a vocabulary file
// is configured, starts watching it for changes. On error everything opened
// so far is closed.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	paths, err := NewPaths(cfg.Storage.Path, cfg.Lexicon.VocabularyPath)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(cfg, paths, log)
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	store, err := OpenStore(cfg.Storage.Driver, paths.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Paths:  paths,
		Store:  store,
		Engine: engine,
	}

	if paths.Vocabulary != "" && !cfg.Lexicon.NoWatch {
		if err := a.watchVocabulary(); err != nil {
			store.Close()
			return nil, fmt.Errorf("watch vocabulary: %w", err)
		}
	}

	return a, nil
}

// NewEngineOnly builds just the lexical engine, for commands that touch
// neither storage nor the network.
func NewEngineOnly(cfg *config.Config, log *slog.Logger) (*Engine, error) {
	paths, err := NewPaths(cfg.Storage.Path, cfg.Lexicon.VocabularyPath)
	if err != nil {
		return nil, err
	}
	return newEngine(cfg, paths, log)
}

func newEngine(cfg *config.Config, paths *Paths, log *slog.Logger) (*Engine, error) {
	vocab, err := LoadVocabulary(paths.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	engine, err := NewEngine(vocab, cfg.Lexicon.Languages, log)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}

// OpenStore opens the report store for driver at path.
func OpenStore(driver, path string) (ports.ReportStore, error) {
	switch driver {
	case "bbolt":
		s, err := bbolt.NewStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.NewStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func (a *App) watchVocabulary() error {
	w, err := fsw.NewWatcher(a.Log)
	if err != nil {
		return err
	}
	err = w.Watch(a.Paths.Vocabulary, func(path string) {
		if err := a.Engine.Reload(path); err != nil {
			a.Log.Error("vocabulary reload failed, keeping previous vocabulary",
				slog.String("path", path), slog.Any("error", err))
		}
	})
	if err != nil {
		w.Stop()
		return err
	}
	a.watcher = w
	return nil
}

// Pipeline builds the pull pipeline. It needs both API keys.
func (a *App) Pipeline() (*Pipeline, error) {
	if err := a.Config.RequireFeed(); err != nil {
		return nil, err
	}
	if err := a.Config.RequireAdvisor(); err != nil {
		return nil, err
	}

	feed, err := newsdata.New(newsdata.Options{
		APIKey:  a.Config.Feed.APIKey,
		BaseURL: a.Config.Feed.BaseURL,
		Query:   a.Config.Feed.Query,
		Timeout: a.Config.Feed.Timeout,
	}, a.Engine, a.Engine, a.Log)
	if err != nil {
		return nil, err
	}

	adv, err := anthropic.NewSessionless(a.advisorOptions(a.Config.Advisor.EffectivePrompt()), a.Log)
	if err != nil {
		return nil, err
	}

	return NewPipeline(feed, adv, a.Store, PipelineConfig{
		Concurrency: a.Config.Schedule.Concurrency,
		Interval:    a.Config.Schedule.Interval,
	}, a.Log), nil
}

// ChatAdvisor builds an advisor that keeps conversation history.
// An empty prompt falls back to the configured one.
func ChatAdvisor(cfg *config.Config, prompt string, log *slog.Logger) (*anthropic.Advisor, error) {
	if err := cfg.RequireAdvisor(); err != nil {
		return nil, err
	}
	if prompt == "" {
		prompt = cfg.Advisor.EffectivePrompt()
	}
	return anthropic.NewChat(advisorOptions(cfg.Advisor, prompt), log)
}

func (a *App) advisorOptions(system string) anthropic.Options {
	return advisorOptions(a.Config.Advisor, system)
}

func advisorOptions(c config.AdvisorConfig, system string) anthropic.Options {
	return anthropic.Options{
		APIKey:    c.APIKey,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		BaseURL:   c.BaseURL,
		System:    system,
	}
}

// Close stops the watcher and closes the store.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
