// Package server parses game server flags and starts the HTTP runtime.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	entrypoint "github.com/lanternworks/expedition/internal/platform/cmd"
	"github.com/lanternworks/expedition/internal/services/game/api/rest"
	"github.com/lanternworks/expedition/internal/services/game/app"
	"github.com/lanternworks/expedition/internal/services/game/app/narrative"
	"github.com/lanternworks/expedition/internal/services/game/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds game server configuration.
type Config struct {
	Addr   string `env:"EXPEDITION_ADDR" envDefault:":8080"`
	DBPath string `env:"EXPEDITION_DB_PATH" envDefault:"data/game.db"`

	ExecutionTTL   time.Duration `env:"EXPEDITION_EXECUTION_TTL" envDefault:"30m"`
	ReaperInterval time.Duration `env:"EXPEDITION_REAPER_INTERVAL" envDefault:"5m"`

	NarrativeProvider string `env:"EXPEDITION_NARRATIVE_PROVIDER"`
	NarrativeModel    string `env:"EXPEDITION_NARRATIVE_MODEL"`
	NarrativeAPIKey   string `env:"EXPEDITION_NARRATIVE_API_KEY"`
	NarrativeBaseURL  string `env:"EXPEDITION_NARRATIVE_BASE_URL"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database file")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game HTTP service and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close game store: %v", err)
		}
	}()

	narrator, err := newNarrator(cfg)
	if err != nil {
		return err
	}
	stores := app.Stores{Pools: store, Mappings: store, Executions: store, Telemetry: store}
	runtime, err := app.NewRuntime(stores, narrator, cfg.ExecutionTTL, cfg.ReaperInterval)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	rest.NewHandler(runtime.Pools, runtime.Mappings, runtime.Exploration, runtime.Progress, runtime.Experience, runtime.Emitter).Register(mux)

	httpServer := &http.Server{Addr: cfg.Addr, Handler: rest.Traced(mux)}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("game server listening at %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		err := runtime.Reaper.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func openStore(path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open game sqlite store: %w", err)
	}
	return store, nil
}

// newNarrator builds the narration generator named in the config, keeping
// the deterministic generator when no provider is configured.
func newNarrator(cfg Config) (narrative.Generator, error) {
	if cfg.NarrativeProvider == "" {
		return narrative.Static{}, nil
	}
	var opts []anyllmlib.Option
	if cfg.NarrativeAPIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.NarrativeAPIKey))
	}
	if cfg.NarrativeBaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.NarrativeBaseURL))
	}
	return narrative.NewLLM(cfg.NarrativeProvider, cfg.NarrativeModel, opts...)
}
