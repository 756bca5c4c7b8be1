// Package app hosts the game application services that sit between the
// transport surfaces and storage.
package app

import (
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

// Stores bundles the persistence dependencies the game services need.
type Stores struct {
	Pools      storage.PoolStore
	Mappings   storage.MappingStore
	Executions storage.ExecutionStore
	Telemetry  storage.TelemetryStore
}
