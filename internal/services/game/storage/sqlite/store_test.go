package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/exploration"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPoolRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pool, err := entity.NewPool("session-1", "campaign-1", "theme-1", now)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if _, err := pool.Upsert(entity.KindCore, entity.CategoryEnemy, entity.Entity{
		ID: "e1", Name: "Hollow Guard", Category: entity.CategoryEnemy, MilestoneID: "m1", ProgressContribution: 50,
	}, now); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	stored, err := store.PutPool(ctx, pool)
	if err != nil {
		t.Fatalf("put pool: %v", err)
	}
	if stored.Revision != 1 {
		t.Fatalf("revision = %d, want 1", stored.Revision)
	}

	loaded, err := store.GetPool(ctx, "session-1")
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loaded.CampaignID != "campaign-1" || len(loaded.Enemies) != 1 {
		t.Fatalf("loaded pool = %+v", loaded)
	}
	if loaded.Enemies[0].Name != "Hollow Guard" {
		t.Fatalf("enemy name = %q", loaded.Enemies[0].Name)
	}
}

func TestPutPoolRejectsStaleRevision(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pool, err := entity.NewPool("session-1", "campaign-1", "", now)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	first, err := store.PutPool(ctx, pool)
	if err != nil {
		t.Fatalf("initial put: %v", err)
	}

	// Two writers load revision 1; the second write must lose.
	if _, err := store.PutPool(ctx, first); err != nil {
		t.Fatalf("first concurrent put: %v", err)
	}
	if _, err := store.PutPool(ctx, first); !errors.Is(err, storage.ErrRevisionConflict) {
		t.Fatalf("stale put error = %v, want ErrRevisionConflict", err)
	}
}

func TestPutPoolDuplicateCreateConflicts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pool, err := entity.NewPool("session-1", "campaign-1", "", now)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if _, err := store.PutPool(ctx, pool); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := store.PutPool(ctx, pool); !errors.Is(err, storage.ErrRevisionConflict) {
		t.Fatalf("duplicate create error = %v, want ErrRevisionConflict", err)
	}
}

func TestGetPoolNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetPool(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListPoolsByCampaign(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, sessionID := range []string{"session-1", "session-2"} {
		pool, err := entity.NewPool(sessionID, "campaign-1", "", now)
		if err != nil {
			t.Fatalf("new pool: %v", err)
		}
		if _, err := store.PutPool(ctx, pool); err != nil {
			t.Fatalf("put pool %s: %v", sessionID, err)
		}
	}
	other, err := entity.NewPool("session-3", "campaign-2", "", now)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if _, err := store.PutPool(ctx, other); err != nil {
		t.Fatalf("put pool: %v", err)
	}

	pools, err := store.ListPoolsByCampaign(ctx, "campaign-1")
	if err != nil {
		t.Fatalf("list pools: %v", err)
	}
	if len(pools) != 2 {
		t.Fatalf("pools = %d, want 2", len(pools))
	}
}

func testStoredMapping(id string) mapping.Mapping {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return mapping.Mapping{
		ID:             id,
		SessionID:      "session-1",
		LocationID:     "loc-1",
		EntityID:       "entity-" + id,
		EntityKind:     entity.KindCore,
		EntityCategory: entity.CategoryEnemy,
		IsAvailable:    true,
		Prerequisites:  []string{"entity-gate"},
		TimeWindow:     &mapping.TimeWindow{OpensAtMinute: 30, ClosesAtMinute: 90},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMappingRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stored := testStoredMapping("map-1")
	if err := store.PutMappings(ctx, []mapping.Mapping{stored}); err != nil {
		t.Fatalf("put mappings: %v", err)
	}

	loaded, err := store.GetMapping(ctx, "map-1")
	if err != nil {
		t.Fatalf("get mapping: %v", err)
	}
	if loaded.EntityID != stored.EntityID || loaded.EntityCategory != entity.CategoryEnemy {
		t.Fatalf("loaded mapping = %+v", loaded)
	}
	if loaded.TimeWindow == nil || loaded.TimeWindow.OpensAtMinute != 30 || loaded.TimeWindow.ClosesAtMinute != 90 {
		t.Fatalf("time window = %+v", loaded.TimeWindow)
	}
	if len(loaded.Prerequisites) != 1 || loaded.Prerequisites[0] != "entity-gate" {
		t.Fatalf("prerequisites = %v", loaded.Prerequisites)
	}
}

func TestMappingWithoutTimeWindowStaysNil(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stored := testStoredMapping("map-1")
	stored.TimeWindow = nil
	if err := store.PutMappings(ctx, []mapping.Mapping{stored}); err != nil {
		t.Fatalf("put mappings: %v", err)
	}

	loaded, err := store.GetMapping(ctx, "map-1")
	if err != nil {
		t.Fatalf("get mapping: %v", err)
	}
	if loaded.TimeWindow != nil {
		t.Fatalf("time window = %+v, want nil", loaded.TimeWindow)
	}
}

func TestListMappingsByLocation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := testStoredMapping("map-1")
	second := testStoredMapping("map-2")
	second.LocationID = "loc-2"
	if err := store.PutMappings(ctx, []mapping.Mapping{first, second}); err != nil {
		t.Fatalf("put mappings: %v", err)
	}

	mappings, err := store.ListMappingsByLocation(ctx, "session-1", "loc-1")
	if err != nil {
		t.Fatalf("list by location: %v", err)
	}
	if len(mappings) != 1 || mappings[0].ID != "map-1" {
		t.Fatalf("mappings = %+v", mappings)
	}

	all, err := store.ListMappingsBySession(ctx, "session-1")
	if err != nil {
		t.Fatalf("list by session: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("session mappings = %d, want 2", len(all))
	}
}

func TestUpdateAvailability(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMappings(ctx, []mapping.Mapping{testStoredMapping("map-1")}); err != nil {
		t.Fatalf("put mappings: %v", err)
	}
	updatedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.UpdateAvailability(ctx, "map-1", false, updatedAt); err != nil {
		t.Fatalf("update availability: %v", err)
	}

	loaded, err := store.GetMapping(ctx, "map-1")
	if err != nil {
		t.Fatalf("get mapping: %v", err)
	}
	if loaded.IsAvailable {
		t.Fatal("mapping still available after update")
	}
	if !loaded.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("updated at = %v, want %v", loaded.UpdatedAt, updatedAt)
	}

	if err := store.UpdateAvailability(ctx, "missing", true, updatedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMarkDiscoveredKeepsFirstTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stored := testStoredMapping("map-1")
	stored.IsAvailable = false
	if err := store.PutMappings(ctx, []mapping.Mapping{stored}); err != nil {
		t.Fatalf("put mappings: %v", err)
	}

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	discovered, err := store.MarkDiscovered(ctx, "map-1", first)
	if err != nil {
		t.Fatalf("mark discovered: %v", err)
	}
	if discovered.DiscoveredAt == nil || !discovered.DiscoveredAt.Equal(first) {
		t.Fatalf("discovered at = %v, want %v", discovered.DiscoveredAt, first)
	}
	if !discovered.IsAvailable {
		t.Fatal("discovery should force availability")
	}

	again, err := store.MarkDiscovered(ctx, "map-1", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("mark discovered again: %v", err)
	}
	if !again.DiscoveredAt.Equal(first) {
		t.Fatalf("discovered at moved to %v, want %v", again.DiscoveredAt, first)
	}
}

func TestSessionClock(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	minute, err := store.GetSessionClock(ctx, "session-1")
	if err != nil {
		t.Fatalf("get clock: %v", err)
	}
	if minute != 0 {
		t.Fatalf("initial minute = %d, want 0", minute)
	}

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if minute, err = store.AdvanceSessionClock(ctx, "session-1", 45, now); err != nil {
		t.Fatalf("advance clock: %v", err)
	}
	if minute != 45 {
		t.Fatalf("minute = %d, want 45", minute)
	}
	if minute, err = store.AdvanceSessionClock(ctx, "session-1", 15, now.Add(time.Minute)); err != nil {
		t.Fatalf("advance clock: %v", err)
	}
	if minute != 60 {
		t.Fatalf("minute = %d, want 60", minute)
	}

	if _, err := store.AdvanceSessionClock(ctx, "session-1", -5, now); err == nil {
		t.Fatal("expected error for negative minutes")
	}
}

func TestExecutionRoundTripAndReap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pending, err := exploration.Start("exec-1", "session-1", "char-1", "entity-1", exploration.ActionInteract, "", now)
	if err != nil {
		t.Fatalf("start execution: %v", err)
	}
	if err := store.PutExecution(ctx, pending); err != nil {
		t.Fatalf("put execution: %v", err)
	}

	loaded, err := store.GetExecution(ctx, "exec-1")
	if err != nil {
		t.Fatalf("get execution: %v", err)
	}
	if loaded.Phase != exploration.PhaseAwaitingInput {
		t.Fatalf("phase = %s", loaded.Phase)
	}

	resolved, err := exploration.Start("exec-2", "session-1", "char-1", "entity-1", exploration.ActionInvestigate, "", now)
	if err != nil {
		t.Fatalf("start execution: %v", err)
	}
	if err := resolved.Resolve("char-1", exploration.Outcome{Success: true}, now); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := store.PutExecution(ctx, resolved); err != nil {
		t.Fatalf("put execution: %v", err)
	}

	removed, err := store.DeleteExpired(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want only the pending execution", removed)
	}
	if _, err := store.GetExecution(ctx, "exec-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("reaped execution error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetExecution(ctx, "exec-2"); err != nil {
		t.Fatalf("resolved execution should survive: %v", err)
	}
}

func TestTelemetryEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, kind := range []string{"pool.updated", "location.explored"} {
		event := storage.TelemetryEvent{
			ID:         "event-" + kind,
			SessionID:  "session-1",
			Kind:       kind,
			Payload:    map[string]string{"index": string(rune('0' + i))},
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendEvent(ctx, event); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	events, err := store.ListEventsBySession(ctx, "session-1", 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Kind != "location.explored" {
		t.Fatalf("newest event = %s, want location.explored first", events[0].Kind)
	}
}
