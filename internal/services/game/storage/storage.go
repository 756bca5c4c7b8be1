// Package storage defines persistence contracts for game service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/exploration"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
)

var (
	// ErrNotFound indicates a requested game record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrRevisionConflict indicates a pool write lost a concurrent update race.
	ErrRevisionConflict = errors.New("pool revision conflict")
)

// PoolStore persists session entity pools as whole documents. PutPool is an
// optimistic write: it succeeds only when the stored revision matches the
// revision the pool was loaded at, then advances it by one.
type PoolStore interface {
	PutPool(ctx context.Context, pool entity.Pool) (entity.Pool, error)
	GetPool(ctx context.Context, sessionID string) (entity.Pool, error)
	ListPoolsByCampaign(ctx context.Context, campaignID string) ([]entity.Pool, error)
}

// MappingStore persists location-entity mappings and the per-session clock
// that drives time-windowed availability.
type MappingStore interface {
	PutMappings(ctx context.Context, mappings []mapping.Mapping) error
	GetMapping(ctx context.Context, mappingID string) (mapping.Mapping, error)
	ListMappingsByLocation(ctx context.Context, sessionID, locationID string) ([]mapping.Mapping, error)
	ListMappingsBySession(ctx context.Context, sessionID string) ([]mapping.Mapping, error)
	UpdateAvailability(ctx context.Context, mappingID string, isAvailable bool, updatedAt time.Time) error
	MarkDiscovered(ctx context.Context, mappingID string, discoveredAt time.Time) (mapping.Mapping, error)
	GetSessionClock(ctx context.Context, sessionID string) (int, error)
	AdvanceSessionClock(ctx context.Context, sessionID string, minutes int, updatedAt time.Time) (int, error)
}

// ExecutionStore persists exploration action executions.
type ExecutionStore interface {
	PutExecution(ctx context.Context, execution exploration.Execution) error
	GetExecution(ctx context.Context, executionID string) (exploration.Execution, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// TelemetryEvent records one game mutation for later inspection.
type TelemetryEvent struct {
	ID         string
	SessionID  string
	Kind       string
	Payload    map[string]string
	OccurredAt time.Time
}

// TelemetryStore persists telemetry events.
type TelemetryStore interface {
	AppendEvent(ctx context.Context, event TelemetryEvent) error
	ListEventsBySession(ctx context.Context, sessionID string, limit int) ([]TelemetryEvent, error)
}

// Store bundles the game persistence contracts behind one handle.
type Store interface {
	PoolStore
	MappingStore
	ExecutionStore
	TelemetryStore
	Close() error
}
