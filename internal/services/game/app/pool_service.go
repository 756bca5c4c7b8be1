package app

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/storage"
	"github.com/lanternworks/expedition/internal/telemetry"
)

// poolWriteRetries bounds the optimistic retry loop on revision conflicts.
const poolWriteRetries = 3

// PoolService manages session entity pools.
type PoolService struct {
	stores  Stores
	emitter *telemetry.Emitter
	clock   func() time.Time

	onChange func(sessionID string)
}

// NewPoolService creates a PoolService with default dependencies.
func NewPoolService(stores Stores, emitter *telemetry.Emitter) *PoolService {
	return &PoolService{stores: stores, emitter: emitter, clock: time.Now}
}

// OnChange registers a hook invoked after every successful pool mutation.
func (s *PoolService) OnChange(hook func(sessionID string)) {
	s.onChange = hook
}

func (s *PoolService) notify(sessionID string) {
	if s.onChange != nil {
		s.onChange(sessionID)
	}
}

// Get returns the pool for a session.
func (s *PoolService) Get(ctx context.Context, sessionID string) (entity.Pool, error) {
	if s == nil || s.stores.Pools == nil {
		return entity.Pool{}, apperrors.New(apperrors.CodeStorage, "pool store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entity.Pool{}, apperrors.New(apperrors.CodePoolSessionIDRequired, "session id is required")
	}
	pool, err := s.stores.Pools.GetPool(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return entity.Pool{}, apperrors.WithMetadata(apperrors.CodeNotFound, "entity pool not found", map[string]string{"sessionId": sessionID})
		}
		return entity.Pool{}, apperrors.Wrap(apperrors.CodeStorage, "get pool", err)
	}
	return pool, nil
}

// CreateIfAbsent creates an empty pool for a session when none exists yet.
// An existing pool is returned unchanged, so the call is idempotent.
func (s *PoolService) CreateIfAbsent(ctx context.Context, sessionID, campaignID, themeID string) (entity.Pool, error) {
	pool, err := s.Get(ctx, sessionID)
	if err == nil {
		return pool, nil
	}
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return entity.Pool{}, err
	}

	now := s.clock().UTC()
	fresh, err := entity.NewPool(sessionID, campaignID, themeID, now)
	if err != nil {
		return entity.Pool{}, err
	}
	stored, err := s.stores.Pools.PutPool(ctx, fresh)
	if err != nil {
		if errors.Is(err, storage.ErrRevisionConflict) {
			// Lost a create race; the winner's pool is authoritative.
			return s.Get(ctx, sessionID)
		}
		return entity.Pool{}, apperrors.Wrap(apperrors.CodeStorage, "create pool", err)
	}
	s.emitter.Emit(ctx, sessionID, telemetry.KindPoolCreated, map[string]string{"campaignId": campaignID})
	s.notify(sessionID)
	return stored, nil
}

// UpsertEntity adds or merges one entity into a session pool. When
// createIfAbsent is set a missing pool is created first; otherwise the call
// fails with a not-found error.
func (s *PoolService) UpsertEntity(ctx context.Context, sessionID, campaignID string, kind entity.Kind, category entity.Category, incoming entity.Entity, createIfAbsent bool) (entity.Entity, error) {
	var stored entity.Entity
	err := s.mutate(ctx, sessionID, func(pool *entity.Pool) error {
		var err error
		stored, err = pool.Upsert(kind, category, incoming, s.clock().UTC())
		return err
	}, func() (entity.Pool, error) {
		if !createIfAbsent {
			return entity.Pool{}, apperrors.WithMetadata(apperrors.CodeNotFound, "entity pool not found", map[string]string{"sessionId": sessionID})
		}
		return s.CreateIfAbsent(ctx, sessionID, campaignID, "")
	})
	if err != nil {
		return entity.Entity{}, err
	}
	s.emitter.Emit(ctx, sessionID, telemetry.KindPoolUpdated, map[string]string{
		"entityId": stored.Identity(),
		"category": string(category),
	})
	s.notify(sessionID)
	return stored, nil
}

// RemoveEntity removes one entity from a session pool.
func (s *PoolService) RemoveEntity(ctx context.Context, sessionID string, category entity.Category, entityID string) (entity.Entity, error) {
	var removed entity.Entity
	err := s.mutate(ctx, sessionID, func(pool *entity.Pool) error {
		var err error
		removed, err = pool.Remove(category, entityID, s.clock().UTC())
		return err
	}, nil)
	if err != nil {
		return entity.Entity{}, err
	}
	s.emitter.Emit(ctx, sessionID, telemetry.KindEntityRemoved, map[string]string{
		"entityId": removed.Identity(),
		"category": string(category),
	})
	s.notify(sessionID)
	return removed, nil
}

// RemoveRef identifies one entity in a bulk removal. Items in one batch may
// span categories.
type RemoveRef struct {
	Kind     entity.Kind     `json:"entityType"`
	Category entity.Category `json:"category"`
	EntityID string          `json:"entityId"`
}

// BulkRemoveResult reports the outcome of a best-effort bulk removal.
type BulkRemoveResult struct {
	Removed []string `json:"removed"`
	Missing []string `json:"missing"`
}

// BulkRemove removes entities best-effort: missing entries are reported rather
// than failing the batch.
func (s *PoolService) BulkRemove(ctx context.Context, sessionID string, refs []RemoveRef) (BulkRemoveResult, error) {
	result := BulkRemoveResult{Removed: []string{}, Missing: []string{}}
	categories := map[string]entity.Category{}
	err := s.mutate(ctx, sessionID, func(pool *entity.Pool) error {
		result.Removed = result.Removed[:0]
		result.Missing = result.Missing[:0]
		now := s.clock().UTC()
		for _, ref := range refs {
			removed, err := pool.Remove(ref.Category, ref.EntityID, now)
			if err != nil {
				if apperrors.IsCode(err, apperrors.CodeNotFound) {
					result.Missing = append(result.Missing, ref.EntityID)
					continue
				}
				return err
			}
			result.Removed = append(result.Removed, removed.Identity())
			categories[removed.Identity()] = ref.Category
		}
		return nil
	}, nil)
	if err != nil {
		return BulkRemoveResult{}, err
	}
	for _, entityID := range result.Removed {
		s.emitter.Emit(ctx, sessionID, telemetry.KindEntityRemoved, map[string]string{
			"entityId": entityID,
			"category": string(categories[entityID]),
		})
	}
	s.notify(sessionID)
	return result, nil
}

// ListByCampaign returns every pool in a campaign.
func (s *PoolService) ListByCampaign(ctx context.Context, campaignID string) ([]entity.Pool, error) {
	if s == nil || s.stores.Pools == nil {
		return nil, apperrors.New(apperrors.CodeStorage, "pool store is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, apperrors.New(apperrors.CodePoolCampaignIDRequired, "campaign id is required")
	}
	pools, err := s.stores.Pools.ListPoolsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list pools", err)
	}
	return pools, nil
}

// mutate runs a load-modify-write cycle with optimistic retries. When the
// pool is missing and a loader is supplied, the loader provides the starting
// pool instead of failing.
func (s *PoolService) mutate(ctx context.Context, sessionID string, apply func(*entity.Pool) error, onMissing func() (entity.Pool, error)) error {
	if s == nil || s.stores.Pools == nil {
		return apperrors.New(apperrors.CodeStorage, "pool store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return apperrors.New(apperrors.CodePoolSessionIDRequired, "session id is required")
	}

	var lastErr error
	for attempt := 0; attempt < poolWriteRetries; attempt++ {
		pool, err := s.stores.Pools.GetPool(ctx, sessionID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				if onMissing == nil {
					return apperrors.WithMetadata(apperrors.CodeNotFound, "entity pool not found", map[string]string{"sessionId": sessionID})
				}
				pool, err = onMissing()
				if err != nil {
					return err
				}
			} else {
				return apperrors.Wrap(apperrors.CodeStorage, "get pool", err)
			}
		}

		if err := apply(&pool); err != nil {
			return err
		}
		if _, err := s.stores.Pools.PutPool(ctx, pool); err != nil {
			if errors.Is(err, storage.ErrRevisionConflict) {
				lastErr = err
				continue
			}
			return apperrors.Wrap(apperrors.CodeStorage, "put pool", err)
		}
		return nil
	}
	return apperrors.Wrap(apperrors.CodePoolRevisionConflict, "pool revision conflict after retries", lastErr)
}
