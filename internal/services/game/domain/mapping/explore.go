package mapping

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
)

// Intensity trades discovery breadth for simulated time cost.
type Intensity string

const (
	IntensityLight      Intensity = "light"
	IntensityThorough   Intensity = "thorough"
	IntensityExhaustive Intensity = "exhaustive"
)

// ParseIntensity parses a wire-format exploration intensity.
func ParseIntensity(value string) (Intensity, error) {
	switch Intensity(strings.TrimSpace(strings.ToLower(value))) {
	case IntensityLight:
		return IntensityLight, nil
	case IntensityThorough:
		return IntensityThorough, nil
	case IntensityExhaustive:
		return IntensityExhaustive, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeExplorationIntensityInvalid,
			"exploration intensity must be light, thorough, or exhaustive",
			map[string]string{"explorationIntensity": value})
	}
}

// DiscoveryCap returns the maximum number of entities one exploration call
// may newly discover. Exhaustive has no cap.
func (i Intensity) DiscoveryCap(remaining int) int {
	switch i {
	case IntensityLight:
		return 1
	case IntensityThorough:
		return 3
	case IntensityExhaustive:
		return remaining
	default:
		return 0
	}
}

// TimeCostMinutes returns the simulated session time one exploration call
// consumes.
func (i Intensity) TimeCostMinutes() int {
	switch i {
	case IntensityLight:
		return 15
	case IntensityThorough:
		return 45
	case IntensityExhaustive:
		return 90
	default:
		return 0
	}
}

// Discovery describes one entity newly discovered by an exploration call.
type Discovery struct {
	MappingID      string          `json:"mappingId"`
	EntityID       string          `json:"entityId"`
	EntityKind     entity.Kind     `json:"entityType"`
	EntityCategory entity.Category `json:"entityCategory"`
	DiscoveredAt   time.Time       `json:"discoveredAt"`
}

// Result is the outcome of one exploreLocation call.
type Result struct {
	LocationID       string      `json:"locationId"`
	Discovered       []Discovery `json:"newlyDiscovered"`
	ExplorationLevel int         `json:"explorationLevel"`
	TimeSpentMinutes int         `json:"timeSpentMinutes"`
	IsFullyExplored  bool        `json:"isFullyExplored"`
}

// Explore runs the discovery algorithm over one location's mappings.
//
// Candidates are the available, undiscovered mappings. Selection order is
// deterministic: core entities before bonus entities, then insertion order
// (CreatedAt, then id as a tiebreak). Up to the intensity's cap are marked
// discovered at the provided time. The exploration level is the discovered
// share of all mapped entities after this call's mutations; a location with
// zero mapped entities counts as fully explored at level 100.
func Explore(locationID string, mappings []Mapping, intensity Intensity, at time.Time) (Result, []Discovery) {
	result := Result{
		LocationID:       locationID,
		TimeSpentMinutes: intensity.TimeCostMinutes(),
	}

	if len(mappings) == 0 {
		result.ExplorationLevel = 100
		result.IsFullyExplored = true
		return result, nil
	}

	var candidates []Mapping
	discoveredCount := 0
	for _, m := range mappings {
		if m.Discovered() {
			discoveredCount++
			continue
		}
		if m.IsAvailable {
			candidates = append(candidates, m)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.EntityKind != b.EntityKind {
			return a.EntityKind == entity.KindCore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	cap := intensity.DiscoveryCap(len(candidates))
	if cap > len(candidates) {
		cap = len(candidates)
	}

	stamped := at.UTC()
	for _, m := range candidates[:cap] {
		result.Discovered = append(result.Discovered, Discovery{
			MappingID:      m.ID,
			EntityID:       m.EntityID,
			EntityKind:     m.EntityKind,
			EntityCategory: m.EntityCategory,
			DiscoveredAt:   stamped,
		})
	}
	discoveredCount += len(result.Discovered)

	result.ExplorationLevel = discoveredCount * 100 / len(mappings)
	result.IsFullyExplored = result.ExplorationLevel >= 100 && discoveredCount == len(mappings)
	return result, result.Discovered
}

// Level computes a location's exploration level from its mappings.
func Level(mappings []Mapping) int {
	if len(mappings) == 0 {
		return 100
	}
	discovered := 0
	for _, m := range mappings {
		if m.Discovered() {
			discovered++
		}
	}
	return discovered * 100 / len(mappings)
}
