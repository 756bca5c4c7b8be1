package mapping

import "time"

// AvailabilityChange records one mapping whose availability flipped during a
// recompute pass.
type AvailabilityChange struct {
	MappingID   string `json:"mappingId"`
	IsAvailable bool   `json:"isAvailable"`
}

// RecomputeAvailability evaluates every mapping's availability rules against
// the current session minute and the set of already-discovered entity ids,
// and returns the changes to persist.
//
// A mapping becomes available when its time window is open (or absent) and
// every prerequisite entity has been discovered. A mapping whose window has
// closed becomes unavailable again, with one exception: discovery is never
// retracted, so discovered mappings stay available forever.
func RecomputeAvailability(mappings []Mapping, discovered map[string]bool, sessionMinute int) []AvailabilityChange {
	var changes []AvailabilityChange
	for _, m := range mappings {
		if m.Discovered() {
			if !m.IsAvailable {
				changes = append(changes, AvailabilityChange{MappingID: m.ID, IsAvailable: true})
			}
			continue
		}

		available := true
		if m.TimeWindow != nil && !m.TimeWindow.OpenAt(sessionMinute) {
			available = false
		}
		for _, prerequisite := range m.Prerequisites {
			if !discovered[prerequisite] {
				available = false
				break
			}
		}

		if available != m.IsAvailable {
			changes = append(changes, AvailabilityChange{MappingID: m.ID, IsAvailable: available})
		}
	}
	return changes
}

// DiscoveredEntityIDs collects the entity ids of every discovered mapping.
func DiscoveredEntityIDs(mappings []Mapping) map[string]bool {
	discovered := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if m.Discovered() {
			discovered[m.EntityID] = true
		}
	}
	return discovered
}

// MarkDiscovered stamps the discovery time if unset and forces availability.
// Calling it on an already-discovered mapping changes nothing.
func MarkDiscovered(m Mapping, at time.Time) Mapping {
	if m.Discovered() {
		return m
	}
	stamped := at.UTC()
	m.DiscoveredAt = &stamped
	m.IsAvailable = true
	m.UpdatedAt = stamped
	return m
}
