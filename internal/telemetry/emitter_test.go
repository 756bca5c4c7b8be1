package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/storage"
)

type fakeTelemetryStore struct {
	events []storage.TelemetryEvent
}

func (f *fakeTelemetryStore) AppendEvent(_ context.Context, event storage.TelemetryEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeTelemetryStore) ListEventsBySession(_ context.Context, sessionID string, _ int) ([]storage.TelemetryEvent, error) {
	return f.events, nil
}

func TestEmitRecordsEvent(t *testing.T) {
	store := &fakeTelemetryStore{}
	emitter := NewEmitter(store)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	emitter.clock = func() time.Time { return now }

	emitter.Emit(context.Background(), "session-1", KindPoolUpdated, map[string]string{"entityId": "e1"})

	if len(store.events) != 1 {
		t.Fatalf("events = %d, want 1", len(store.events))
	}
	event := store.events[0]
	if event.ID == "" {
		t.Fatal("event id not assigned")
	}
	if event.Kind != KindPoolUpdated || event.SessionID != "session-1" {
		t.Fatalf("event = %+v", event)
	}
	if !event.OccurredAt.Equal(now) {
		t.Fatalf("occurred at = %v, want %v", event.OccurredAt, now)
	}
}

func TestEmitNilEmitterIsNoop(t *testing.T) {
	var emitter *Emitter
	emitter.Emit(context.Background(), "session-1", KindDiscovery, nil)
}

func TestEmitNilStoreIsNoop(t *testing.T) {
	emitter := NewEmitter(nil)
	emitter.Emit(context.Background(), "session-1", KindDiscovery, nil)
}
