package app

import (
	"context"
	"errors"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/experience"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

// maskedViewCacheSize bounds the per-session masked view cache.
const maskedViewCacheSize = 256

// ExperienceService serves the player-facing masked view of session state.
// Masked views are cached per session; mutating services invalidate through
// Invalidate.
type ExperienceService struct {
	stores Stores
	cache  *lru.Cache
}

// NewExperienceService creates an ExperienceService.
func NewExperienceService(stores Stores) (*ExperienceService, error) {
	cache, err := lru.New(maskedViewCacheSize)
	if err != nil {
		return nil, err
	}
	return &ExperienceService{stores: stores, cache: cache}, nil
}

// Invalidate drops the cached masked view for a session. Safe to use as a
// change hook on the mutating services.
func (s *ExperienceService) Invalidate(sessionID string) {
	if s == nil || s.cache == nil {
		return
	}
	s.cache.Remove(sessionID)
}

// MaskedProgress returns the player-visible view of a session.
func (s *ExperienceService) MaskedProgress(ctx context.Context, sessionID string) (experience.MaskedProgress, error) {
	if s == nil || s.stores.Mappings == nil {
		return experience.MaskedProgress{}, apperrors.New(apperrors.CodeStorage, "mapping store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return experience.MaskedProgress{}, apperrors.New(apperrors.CodePoolSessionIDRequired, "session id is required")
	}

	if cached, ok := s.cache.Get(sessionID); ok {
		if masked, ok := cached.(experience.MaskedProgress); ok {
			return masked, nil
		}
	}

	mappings, err := s.stores.Mappings.ListMappingsBySession(ctx, sessionID)
	if err != nil {
		return experience.MaskedProgress{}, apperrors.Wrap(apperrors.CodeStorage, "list mappings", err)
	}

	var pool *entity.Pool
	if s.stores.Pools != nil {
		if loaded, err := s.stores.Pools.GetPool(ctx, sessionID); err == nil {
			pool = &loaded
		} else if !errors.Is(err, storage.ErrNotFound) {
			return experience.MaskedProgress{}, apperrors.Wrap(apperrors.CodeStorage, "get pool", err)
		}
	}

	masked := experience.Build(sessionID, pool, mappings, mapping.Level(mappings))
	s.cache.Add(sessionID, masked)
	return masked, nil
}

// FilterPlayerVisibleContent strips non-player keys from arbitrary content.
func (s *ExperienceService) FilterPlayerVisibleContent(content any) any {
	return experience.FilterPlayerVisible(content)
}
