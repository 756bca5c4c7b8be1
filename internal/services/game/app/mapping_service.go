package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/platform/id"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
	"github.com/lanternworks/expedition/internal/services/game/storage"
	"github.com/lanternworks/expedition/internal/telemetry"
)

// MappingService manages location-entity mappings and location exploration.
type MappingService struct {
	stores      Stores
	emitter     *telemetry.Emitter
	clock       func() time.Time
	idGenerator func() (string, error)

	onChange func(sessionID string)
}

// NewMappingService creates a MappingService with default dependencies.
func NewMappingService(stores Stores, emitter *telemetry.Emitter) *MappingService {
	return &MappingService{
		stores:      stores,
		emitter:     emitter,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// OnChange registers a hook invoked after every successful mapping mutation.
func (s *MappingService) OnChange(hook func(sessionID string)) {
	s.onChange = hook
}

func (s *MappingService) notify(sessionID string) {
	if s.onChange != nil {
		s.onChange(sessionID)
	}
}

// CreateMappings validates and persists a batch of mappings. The whole batch
// is rejected when any element fails validation. Missing ids are assigned.
func (s *MappingService) CreateMappings(ctx context.Context, mappings []mapping.Mapping) ([]mapping.Mapping, error) {
	if s == nil || s.stores.Mappings == nil {
		return nil, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	if len(mappings) == 0 {
		return nil, apperrors.New(apperrors.CodeMappingBatchInvalid, "at least one mapping is required")
	}

	now := s.clock().UTC()
	for i := range mappings {
		if strings.TrimSpace(mappings[i].ID) == "" {
			mappingID, err := s.idGenerator()
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeStorage, "generate mapping id", err)
			}
			mappings[i].ID = mappingID
		}
		mappings[i].CreatedAt = now
		mappings[i].UpdatedAt = now
	}
	if err := mapping.ValidateBatch(mappings); err != nil {
		return nil, err
	}
	if err := s.stores.Mappings.PutMappings(ctx, mappings); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "put mappings", err)
	}
	sessionID := mappings[0].SessionID
	s.emitter.Emit(ctx, sessionID, telemetry.KindMappingsCreated, map[string]string{
		"count": strconv.Itoa(len(mappings)),
	})
	s.notify(sessionID)
	return mappings, nil
}

// LocationEntity is one available mapping joined with its pool entity.
type LocationEntity struct {
	Mapping mapping.Mapping `json:"mapping"`
	Entity  *entity.Entity  `json:"entity,omitempty"`
}

// AvailableEntitiesForLocation returns every mapping for a location with its
// pool entity attached when the pool has it. Unavailable mappings are included
// with their flags; this is the GM-facing join, hiding happens in the
// player-safe view.
func (s *MappingService) AvailableEntitiesForLocation(ctx context.Context, sessionID, locationID string) ([]LocationEntity, error) {
	mappings, err := s.listLocation(ctx, sessionID, locationID)
	if err != nil {
		return nil, err
	}

	var pool *entity.Pool
	if s.stores.Pools != nil {
		if loaded, err := s.stores.Pools.GetPool(ctx, sessionID); err == nil {
			pool = &loaded
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "get pool", err)
		}
	}

	located := []LocationEntity{}
	for _, m := range mappings {
		le := LocationEntity{Mapping: m}
		if pool != nil {
			if found, ok := pool.Find(m.EntityID); ok {
				le.Entity = &found
			}
		}
		located = append(located, le)
	}
	return located, nil
}

// UpdateAvailability flips one mapping's availability flag.
func (s *MappingService) UpdateAvailability(ctx context.Context, mappingID string, isAvailable bool) (mapping.Mapping, error) {
	if s == nil || s.stores.Mappings == nil {
		return mapping.Mapping{}, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	mappingID = strings.TrimSpace(mappingID)
	if mappingID == "" {
		return mapping.Mapping{}, apperrors.New(apperrors.CodeMappingEntityIDRequired, "mapping id is required")
	}

	if err := s.stores.Mappings.UpdateAvailability(ctx, mappingID, isAvailable, s.clock().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mapping.Mapping{}, apperrors.WithMetadata(apperrors.CodeNotFound, "mapping not found", map[string]string{"mappingId": mappingID})
		}
		return mapping.Mapping{}, apperrors.Wrap(apperrors.CodeStorage, "update availability", err)
	}
	updated, err := s.stores.Mappings.GetMapping(ctx, mappingID)
	if err != nil {
		return mapping.Mapping{}, apperrors.Wrap(apperrors.CodeStorage, "get mapping", err)
	}
	s.notify(updated.SessionID)
	return updated, nil
}

// MarkDiscovered records a discovery on one mapping. Marking an already
// discovered mapping keeps the original timestamp.
func (s *MappingService) MarkDiscovered(ctx context.Context, mappingID string) (mapping.Mapping, error) {
	if s == nil || s.stores.Mappings == nil {
		return mapping.Mapping{}, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	mappingID = strings.TrimSpace(mappingID)
	if mappingID == "" {
		return mapping.Mapping{}, apperrors.New(apperrors.CodeMappingEntityIDRequired, "mapping id is required")
	}

	discovered, err := s.stores.Mappings.MarkDiscovered(ctx, mappingID, s.clock().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mapping.Mapping{}, apperrors.WithMetadata(apperrors.CodeNotFound, "mapping not found", map[string]string{"mappingId": mappingID})
		}
		return mapping.Mapping{}, apperrors.Wrap(apperrors.CodeStorage, "mark discovered", err)
	}
	s.emitter.Emit(ctx, discovered.SessionID, telemetry.KindDiscovery, map[string]string{
		"mappingId": discovered.ID,
		"entityId":  discovered.EntityID,
	})
	s.notify(discovered.SessionID)
	return discovered, nil
}

// UpdateDynamicAvailability re-evaluates time windows and prerequisites for
// every mapping in a session against the session clock, and persists the
// resulting availability changes.
func (s *MappingService) UpdateDynamicAvailability(ctx context.Context, sessionID string) ([]mapping.AvailabilityChange, error) {
	if s == nil || s.stores.Mappings == nil {
		return nil, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.New(apperrors.CodeMappingSessionIDRequired, "session id is required")
	}

	mappings, err := s.stores.Mappings.ListMappingsBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list mappings", err)
	}
	minute, err := s.stores.Mappings.GetSessionClock(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "get session clock", err)
	}

	changes := mapping.RecomputeAvailability(mappings, mapping.DiscoveredEntityIDs(mappings), minute)
	now := s.clock().UTC()
	for _, change := range changes {
		if err := s.stores.Mappings.UpdateAvailability(ctx, change.MappingID, change.IsAvailable, now); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "update availability", err)
		}
	}
	if len(changes) > 0 {
		s.notify(sessionID)
	}
	return changes, nil
}

// ExploreLocation runs one exploration pass over a location, persists the
// discoveries, and advances the session clock by the intensity's time cost.
func (s *MappingService) ExploreLocation(ctx context.Context, sessionID, locationID, characterID, intensity string) (mapping.Result, error) {
	if s == nil || s.stores.Mappings == nil {
		return mapping.Result{}, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	parsed, err := mapping.ParseIntensity(intensity)
	if err != nil {
		return mapping.Result{}, err
	}
	mappings, err := s.listLocation(ctx, sessionID, locationID)
	if err != nil {
		return mapping.Result{}, err
	}

	now := s.clock().UTC()
	result, discoveries := mapping.Explore(locationID, mappings, parsed, now)
	for _, discovery := range discoveries {
		if _, err := s.stores.Mappings.MarkDiscovered(ctx, discovery.MappingID, discovery.DiscoveredAt); err != nil {
			return mapping.Result{}, apperrors.Wrap(apperrors.CodeStorage, "mark discovered", err)
		}
	}
	if _, err := s.stores.Mappings.AdvanceSessionClock(ctx, sessionID, result.TimeSpentMinutes, now); err != nil {
		return mapping.Result{}, apperrors.Wrap(apperrors.CodeStorage, "advance session clock", err)
	}

	payload := map[string]string{
		"locationId": locationID,
		"intensity":  string(parsed),
		"discovered": strconv.Itoa(len(result.Discovered)),
	}
	if characterID = strings.TrimSpace(characterID); characterID != "" {
		payload["characterId"] = characterID
	}
	s.emitter.Emit(ctx, sessionID, telemetry.KindLocationExplored, payload)
	s.notify(sessionID)
	return result, nil
}

// ExplorationLevel reports a location's exploration percentage.
func (s *MappingService) ExplorationLevel(ctx context.Context, sessionID, locationID string) (int, error) {
	mappings, err := s.listLocation(ctx, sessionID, locationID)
	if err != nil {
		return 0, err
	}
	return mapping.Level(mappings), nil
}

func (s *MappingService) listLocation(ctx context.Context, sessionID, locationID string) ([]mapping.Mapping, error) {
	if s == nil || s.stores.Mappings == nil {
		return nil, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.New(apperrors.CodeMappingSessionIDRequired, "session id is required")
	}
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return nil, apperrors.New(apperrors.CodeMappingLocationIDRequired, "location id is required")
	}
	mappings, err := s.stores.Mappings.ListMappingsByLocation(ctx, sessionID, locationID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list mappings", err)
	}
	return mappings, nil
}
