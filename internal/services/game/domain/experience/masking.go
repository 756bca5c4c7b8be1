// Package experience builds the player-facing view of exploration state.
// Everything that would spoil authored content (milestone ids, progress
// contributions, undiscovered entities) is stripped before data leaves the
// game master boundary.
package experience

import (
	"sort"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
)

// DiscoveredElement is the player-visible record of a discovery. It carries
// no authoring metadata.
type DiscoveredElement struct {
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	DiscoveredAt time.Time `json:"discoveredAt"`
}

// MaskedProgress is the read model served to players. ExplorationProgress is
// deliberately coarse so precise percentages cannot be reverse-engineered
// into a count of remaining secrets.
type MaskedProgress struct {
	SessionID           string              `json:"sessionId"`
	ExplorationProgress int                 `json:"explorationProgress"`
	AvailableActions    []string            `json:"availableActions"`
	AmbiguousHints      []string            `json:"ambiguousHints"`
	DiscoveredElements  []DiscoveredElement `json:"discoveredElements"`
}

// coarseStep rounds progress down to the nearest bucket.
const coarseStep = 25

// Coarsen maps an exact percentage onto coarse buckets (0, 25, 50, 75, 100).
func Coarsen(percent int) int {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return 100
	}
	return (percent / coarseStep) * coarseStep
}

// Hint returns a vague, category-flavored hint for an undiscovered entity.
// Hints never include the entity name or description.
func Hint(category entity.Category) string {
	switch category {
	case entity.CategoryEnemy:
		return "Something hostile lurks nearby."
	case entity.CategoryEvent:
		return "The air here feels charged, as if something is about to happen."
	case entity.CategoryNPC:
		return "You are not alone in this place."
	case entity.CategoryItem:
		return "Something of value may be hidden here."
	case entity.CategoryQuest:
		return "There is more to this place than meets the eye."
	case entity.CategoryPractical:
		return "A careful search might turn up something useful."
	case entity.CategoryTrophy:
		return "Stories speak of a prize lost in this area."
	case entity.CategoryMystery:
		return "Something about this place defies explanation."
	default:
		return "Your instincts tell you to look closer."
	}
}

// Build assembles the masked view from the session pool and its mappings.
// Undiscovered entities surface only as hints, and only when their mapping is
// currently available. Discovered elements are sorted by discovery time.
func Build(sessionID string, pool *entity.Pool, mappings []mapping.Mapping, explorationPercent int) MaskedProgress {
	masked := MaskedProgress{
		SessionID:           sessionID,
		ExplorationProgress: Coarsen(explorationPercent),
		AvailableActions:    []string{},
		AmbiguousHints:      []string{},
		DiscoveredElements:  []DiscoveredElement{},
	}

	hintSeen := map[string]bool{}
	for _, m := range mappings {
		if m.Discovered() {
			element := DiscoveredElement{
				Name:         m.EntityID,
				Category:     string(m.EntityCategory),
				DiscoveredAt: *m.DiscoveredAt,
			}
			if pool != nil {
				if e, ok := pool.Find(m.EntityID); ok {
					element.Name = e.Name
				}
			}
			masked.DiscoveredElements = append(masked.DiscoveredElements, element)
			continue
		}
		if !m.IsAvailable {
			continue
		}
		hint := Hint(m.EntityCategory)
		if hintSeen[hint] {
			continue
		}
		hintSeen[hint] = true
		masked.AmbiguousHints = append(masked.AmbiguousHints, hint)
	}

	sort.SliceStable(masked.DiscoveredElements, func(i, j int) bool {
		return masked.DiscoveredElements[i].DiscoveredAt.Before(masked.DiscoveredElements[j].DiscoveredAt)
	})

	if len(masked.AmbiguousHints) > 0 {
		masked.AvailableActions = append(masked.AvailableActions, "explore")
	}
	for _, element := range masked.DiscoveredElements {
		switch entity.Category(element.Category) {
		case entity.CategoryEnemy:
			masked.AvailableActions = appendUnique(masked.AvailableActions, "challenge")
		case entity.CategoryNPC:
			masked.AvailableActions = appendUnique(masked.AvailableActions, "interact")
		default:
			masked.AvailableActions = appendUnique(masked.AvailableActions, "investigate")
		}
	}

	return masked
}

func appendUnique(actions []string, action string) []string {
	for _, a := range actions {
		if a == action {
			return actions
		}
	}
	return append(actions, action)
}
