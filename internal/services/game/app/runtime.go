package app

import (
	"time"

	"github.com/lanternworks/expedition/internal/services/game/app/narrative"
	"github.com/lanternworks/expedition/internal/telemetry"
)

// Runtime bundles the wired application services for one process.
type Runtime struct {
	Pools       *PoolService
	Mappings    *MappingService
	Exploration *ExplorationService
	Progress    *ProgressService
	Experience  *ExperienceService
	Reaper      *Reaper
	Emitter     *telemetry.Emitter
}

// NewRuntime wires the services over one store set. Mutating services
// invalidate the masked-view cache through their change hooks, so every
// surface sharing the runtime observes writes immediately.
func NewRuntime(stores Stores, narrator narrative.Generator, executionTTL, reaperInterval time.Duration) (*Runtime, error) {
	experience, err := NewExperienceService(stores)
	if err != nil {
		return nil, err
	}

	emitter := telemetry.NewEmitter(stores.Telemetry)
	pools := NewPoolService(stores, emitter)
	mappings := NewMappingService(stores, emitter)
	exploration := NewExplorationService(stores, emitter, narrator)

	pools.OnChange(experience.Invalidate)
	mappings.OnChange(experience.Invalidate)
	exploration.OnChange(experience.Invalidate)

	return &Runtime{
		Pools:       pools,
		Mappings:    mappings,
		Exploration: exploration,
		Progress:    NewProgressService(stores),
		Experience:  experience,
		Reaper:      NewReaper(stores, executionTTL, reaperInterval),
		Emitter:     emitter,
	}, nil
}
