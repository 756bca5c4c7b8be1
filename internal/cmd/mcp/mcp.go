// Package mcp parses MCP command flags and starts the stdio MCP runtime.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	mcpservice "github.com/lanternworks/expedition/internal/mcp/service"
	entrypoint "github.com/lanternworks/expedition/internal/platform/cmd"
	"github.com/lanternworks/expedition/internal/services/game/app"
	"github.com/lanternworks/expedition/internal/services/game/app/narrative"
	"github.com/lanternworks/expedition/internal/services/game/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath string `env:"EXPEDITION_DB_PATH" envDefault:"data/game.db"`

	ExecutionTTL   time.Duration `env:"EXPEDITION_EXECUTION_TTL" envDefault:"30m"`
	ReaperInterval time.Duration `env:"EXPEDITION_REAPER_INTERVAL" envDefault:"5m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database file")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP stdio service and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game sqlite store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close game store: %v", err)
		}
	}()

	stores := app.Stores{Pools: store, Mappings: store, Executions: store, Telemetry: store}
	runtime, err := app.NewRuntime(stores, narrative.Static{}, cfg.ExecutionTTL, cfg.ReaperInterval)
	if err != nil {
		return err
	}

	return mcpservice.New(mcpservice.Services{
		Pools:       runtime.Pools,
		Mappings:    runtime.Mappings,
		Exploration: runtime.Exploration,
		Experience:  runtime.Experience,
	}).Run(ctx)
}
