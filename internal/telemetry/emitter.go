// Package telemetry records game mutation events for later inspection.
package telemetry

import (
	"context"
	"time"

	"github.com/lanternworks/expedition/internal/platform/id"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

// Event kinds emitted by the game services.
const (
	KindPoolCreated      = "pool.created"
	KindPoolUpdated      = "pool.updated"
	KindEntityRemoved    = "pool.entity_removed"
	KindMappingsCreated  = "mapping.created"
	KindDiscovery        = "mapping.discovered"
	KindLocationExplored = "location.explored"
	KindActionStarted    = "exploration.started"
	KindActionResolved   = "exploration.resolved"
)

// Emitter records telemetry events.
type Emitter struct {
	store       storage.TelemetryStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now, idGenerator: id.NewID}
}

// Emit records a telemetry event. It is a no-op when the store is nil, and
// never fails the surrounding operation.
func (e *Emitter) Emit(ctx context.Context, sessionID, kind string, payload map[string]string) {
	if e == nil || e.store == nil {
		return
	}
	eventID, err := e.idGenerator()
	if err != nil {
		return
	}
	_ = e.store.AppendEvent(ctx, storage.TelemetryEvent{
		ID:         eventID,
		SessionID:  sessionID,
		Kind:       kind,
		Payload:    payload,
		OccurredAt: e.clock().UTC(),
	})
}

// Events returns the most recent events recorded for a session.
func (e *Emitter) Events(ctx context.Context, sessionID string, limit int) ([]storage.TelemetryEvent, error) {
	if e == nil || e.store == nil {
		return nil, nil
	}
	return e.store.ListEventsBySession(ctx, sessionID, limit)
}
