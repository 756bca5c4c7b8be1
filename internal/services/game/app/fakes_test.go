package app

import (
	"context"
	"sync"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/exploration"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

type fakePoolStore struct {
	mu    sync.Mutex
	pools map[string]entity.Pool
}

func newFakePoolStore() *fakePoolStore {
	return &fakePoolStore{pools: map[string]entity.Pool{}}
}

func (f *fakePoolStore) PutPool(_ context.Context, pool entity.Pool) (entity.Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.pools[pool.SessionID]
	if pool.Revision == 0 {
		if ok {
			return entity.Pool{}, storage.ErrRevisionConflict
		}
	} else if !ok {
		return entity.Pool{}, storage.ErrNotFound
	} else if existing.Revision != pool.Revision {
		return entity.Pool{}, storage.ErrRevisionConflict
	}
	pool.Revision++
	f.pools[pool.SessionID] = pool
	return pool, nil
}

func (f *fakePoolStore) GetPool(_ context.Context, sessionID string) (entity.Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool, ok := f.pools[sessionID]
	if !ok {
		return entity.Pool{}, storage.ErrNotFound
	}
	return pool, nil
}

func (f *fakePoolStore) ListPoolsByCampaign(_ context.Context, campaignID string) ([]entity.Pool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pools []entity.Pool
	for _, pool := range f.pools {
		if pool.CampaignID == campaignID {
			pools = append(pools, pool)
		}
	}
	return pools, nil
}

type fakeMappingStore struct {
	mu       sync.Mutex
	mappings map[string]mapping.Mapping
	order    []string
	clocks   map[string]int
}

func newFakeMappingStore() *fakeMappingStore {
	return &fakeMappingStore{mappings: map[string]mapping.Mapping{}, clocks: map[string]int{}}
}

func (f *fakeMappingStore) PutMappings(_ context.Context, mappings []mapping.Mapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range mappings {
		if _, ok := f.mappings[m.ID]; !ok {
			f.order = append(f.order, m.ID)
		}
		f.mappings[m.ID] = m
	}
	return nil
}

func (f *fakeMappingStore) GetMapping(_ context.Context, mappingID string) (mapping.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.mappings[mappingID]
	if !ok {
		return mapping.Mapping{}, storage.ErrNotFound
	}
	return m, nil
}

func (f *fakeMappingStore) ListMappingsByLocation(_ context.Context, sessionID, locationID string) ([]mapping.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mapping.Mapping
	for _, id := range f.order {
		m := f.mappings[id]
		if m.SessionID == sessionID && m.LocationID == locationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMappingStore) ListMappingsBySession(_ context.Context, sessionID string) ([]mapping.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mapping.Mapping
	for _, id := range f.order {
		m := f.mappings[id]
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMappingStore) UpdateAvailability(_ context.Context, mappingID string, isAvailable bool, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.mappings[mappingID]
	if !ok {
		return storage.ErrNotFound
	}
	m.IsAvailable = isAvailable
	m.UpdatedAt = updatedAt
	f.mappings[mappingID] = m
	return nil
}

func (f *fakeMappingStore) MarkDiscovered(_ context.Context, mappingID string, discoveredAt time.Time) (mapping.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.mappings[mappingID]
	if !ok {
		return mapping.Mapping{}, storage.ErrNotFound
	}
	if m.DiscoveredAt == nil {
		at := discoveredAt
		m.DiscoveredAt = &at
	}
	m.IsAvailable = true
	m.UpdatedAt = discoveredAt
	f.mappings[mappingID] = m
	return m, nil
}

func (f *fakeMappingStore) GetSessionClock(_ context.Context, sessionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clocks[sessionID], nil
}

func (f *fakeMappingStore) AdvanceSessionClock(_ context.Context, sessionID string, minutes int, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clocks[sessionID] += minutes
	return f.clocks[sessionID], nil
}

type fakeExecutionStore struct {
	mu         sync.Mutex
	executions map[string]exploration.Execution
}

func newFakeExecutionStore() *fakeExecutionStore {
	return &fakeExecutionStore{executions: map[string]exploration.Execution{}}
}

func (f *fakeExecutionStore) PutExecution(_ context.Context, execution exploration.Execution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executions[execution.ID] = execution
	return nil
}

func (f *fakeExecutionStore) GetExecution(_ context.Context, executionID string) (exploration.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	execution, ok := f.executions[executionID]
	if !ok {
		return exploration.Execution{}, storage.ErrNotFound
	}
	return execution, nil
}

func (f *fakeExecutionStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := 0
	for id, execution := range f.executions {
		if execution.Phase != exploration.PhaseResolved && execution.UpdatedAt.Before(cutoff) {
			delete(f.executions, id)
			removed++
		}
	}
	return removed, nil
}

type fakeTelemetryStore struct {
	mu     sync.Mutex
	events []storage.TelemetryEvent
}

func (f *fakeTelemetryStore) AppendEvent(_ context.Context, event storage.TelemetryEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeTelemetryStore) ListEventsBySession(_ context.Context, sessionID string, _ int) ([]storage.TelemetryEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.TelemetryEvent
	for _, event := range f.events {
		if event.SessionID == sessionID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeTelemetryStore) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kinds []string
	for _, event := range f.events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

func newTestStores() (Stores, *fakePoolStore, *fakeMappingStore, *fakeExecutionStore, *fakeTelemetryStore) {
	pools := newFakePoolStore()
	mappings := newFakeMappingStore()
	executions := newFakeExecutionStore()
	events := &fakeTelemetryStore{}
	return Stores{
		Pools:      pools,
		Mappings:   mappings,
		Executions: executions,
		Telemetry:  events,
	}, pools, mappings, executions, events
}
