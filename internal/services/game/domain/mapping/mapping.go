// Package mapping models location-entity edges and the exploration algorithm
// that drives discovery.
package mapping

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
)

// TimeWindow gates availability to a span of the session clock, measured in
// simulated minutes since session start. A zero ClosesAtMinute means the
// window never closes.
type TimeWindow struct {
	OpensAtMinute  int `json:"opensAtMinute"`
	ClosesAtMinute int `json:"closesAtMinute,omitempty"`
}

// OpenAt reports whether the window is open at the given session minute.
func (w TimeWindow) OpenAt(minute int) bool {
	if minute < w.OpensAtMinute {
		return false
	}
	if w.ClosesAtMinute > 0 && minute >= w.ClosesAtMinute {
		return false
	}
	return true
}

// Validate rejects inverted windows.
func (w TimeWindow) Validate() error {
	if w.OpensAtMinute < 0 || w.ClosesAtMinute < 0 {
		return apperrors.New(apperrors.CodeMappingTimeWindowInvalid, "time window minutes must be non-negative")
	}
	if w.ClosesAtMinute > 0 && w.ClosesAtMinute <= w.OpensAtMinute {
		return apperrors.New(apperrors.CodeMappingTimeWindowInvalid, "time window must close after it opens")
	}
	return nil
}

// Mapping is one location-entity edge, scoped to a session.
//
// DiscoveredAt is set exactly once and never unset. A discovered mapping is
// definitionally available, so discovery forces IsAvailable true and
// availability recompute never retracts it.
type Mapping struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"sessionId"`
	LocationID     string          `json:"locationId"`
	EntityID       string          `json:"entityId"`
	EntityKind     entity.Kind     `json:"entityType"`
	EntityCategory entity.Category `json:"entityCategory"`

	IsAvailable  bool       `json:"isAvailable"`
	DiscoveredAt *time.Time `json:"discoveredAt,omitempty"`

	// Availability rules evaluated by dynamic recompute.
	TimeWindow    *TimeWindow `json:"timeWindow,omitempty"`
	Prerequisites []string    `json:"prerequisites,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Discovered reports whether the mapping has been discovered.
func (m Mapping) Discovered() bool {
	return m.DiscoveredAt != nil
}

// Validate checks one mapping's required fields and enum values.
func (m Mapping) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return apperrors.New(apperrors.CodeMappingSessionIDRequired, "session id is required")
	}
	if strings.TrimSpace(m.LocationID) == "" {
		return apperrors.New(apperrors.CodeMappingLocationIDRequired, "location id is required")
	}
	if strings.TrimSpace(m.EntityID) == "" {
		return apperrors.New(apperrors.CodeMappingEntityIDRequired, "entity id is required")
	}
	if m.EntityKind != entity.KindCore && m.EntityKind != entity.KindBonus {
		return apperrors.WithMetadata(apperrors.CodeMappingEntityKindInvalid,
			"entity type must be core or bonus", map[string]string{"entityType": string(m.EntityKind)})
	}
	category, err := entity.ParseCategory(string(m.EntityCategory))
	if err != nil {
		return apperrors.WithMetadata(apperrors.CodeMappingEntityCategoryInvalid,
			"unknown entity category", map[string]string{"entityCategory": string(m.EntityCategory)})
	}
	if category.Kind() != m.EntityKind {
		return apperrors.WithMetadata(apperrors.CodeMappingEntityCategoryInvalid,
			"entity category does not belong to the declared entity type",
			map[string]string{"entityType": string(m.EntityKind), "entityCategory": string(m.EntityCategory)})
	}
	if m.TimeWindow != nil {
		if err := m.TimeWindow.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBatch validates every mapping in a create batch. One invalid record
// rejects the whole batch; the returned error carries a details entry per
// offending record so callers can report all failures at once.
func ValidateBatch(mappings []Mapping) error {
	if len(mappings) == 0 {
		return apperrors.New(apperrors.CodeMappingBatchInvalid, "at least one mapping is required")
	}
	details := map[string]string{}
	for i, m := range mappings {
		if err := m.Validate(); err != nil {
			details[fmt.Sprintf("mappings[%d]", i)] = err.Error()
		}
	}
	if len(details) > 0 {
		return apperrors.WithMetadata(apperrors.CodeMappingBatchInvalid,
			"mapping batch rejected, no records persisted", details)
	}
	return nil
}
