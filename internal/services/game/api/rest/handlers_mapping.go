package rest

import (
	"net/http"
	"strings"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
)

type createMappingRequest struct {
	SessionID      string              `json:"sessionId"`
	LocationID     string              `json:"locationId"`
	EntityID       string              `json:"entityId"`
	EntityKind     string              `json:"entityType"`
	EntityCategory string              `json:"entityCategory"`
	IsAvailable    bool                `json:"isAvailable"`
	TimeWindow     *mapping.TimeWindow `json:"timeWindow,omitempty"`
	Prerequisites  []string            `json:"prerequisites,omitempty"`
}

type createMappingsRequest struct {
	SessionID string                 `json:"sessionId,omitempty"`
	Mappings  []createMappingRequest `json:"mappings"`
}

func (h *Handler) handleCreateMappings(w http.ResponseWriter, r *http.Request) {
	var req createMappingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	mappings := make([]mapping.Mapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		sessionID := strings.TrimSpace(m.SessionID)
		if sessionID == "" {
			sessionID = strings.TrimSpace(req.SessionID)
		}
		mappings = append(mappings, mapping.Mapping{
			SessionID:      sessionID,
			LocationID:     m.LocationID,
			EntityID:       m.EntityID,
			EntityKind:     entity.Kind(strings.TrimSpace(strings.ToLower(m.EntityKind))),
			EntityCategory: entity.Category(strings.TrimSpace(strings.ToLower(m.EntityCategory))),
			IsAvailable:    m.IsAvailable,
			TimeWindow:     m.TimeWindow,
			Prerequisites:  m.Prerequisites,
		})
	}
	created, err := h.mappings.CreateMappings(r.Context(), mappings)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusCreated, created, h.clock)
}

func (h *Handler) handleLocationEntities(w http.ResponseWriter, r *http.Request) {
	locationID := strings.TrimSpace(r.PathValue("locationID"))
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	entities, err := h.mappings.AvailableEntitiesForLocation(r.Context(), sessionID, locationID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, entities, h.clock)
}

func (h *Handler) handleExplorationLevel(w http.ResponseWriter, r *http.Request) {
	locationID := strings.TrimSpace(r.PathValue("locationID"))
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	level, err := h.mappings.ExplorationLevel(r.Context(), sessionID, locationID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"locationId": locationID, "explorationLevel": level}, h.clock)
}

type exploreRequest struct {
	SessionID   string `json:"sessionId"`
	CharacterID string `json:"characterId,omitempty"`
	Intensity   string `json:"explorationIntensity"`
}

func (h *Handler) handleExploreLocation(w http.ResponseWriter, r *http.Request) {
	locationID := strings.TrimSpace(r.PathValue("locationID"))
	var req exploreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	result, err := h.mappings.ExploreLocation(r.Context(), req.SessionID, locationID, req.CharacterID, req.Intensity)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, result, h.clock)
}

type availabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

func (h *Handler) handleUpdateAvailability(w http.ResponseWriter, r *http.Request) {
	mappingID := strings.TrimSpace(r.PathValue("mappingID"))
	var req availabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	if req.IsAvailable == nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidRequest, "isAvailable is required"), h.clock)
		return
	}
	updated, err := h.mappings.UpdateAvailability(r.Context(), mappingID, *req.IsAvailable)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, updated, h.clock)
}

func (h *Handler) handleMarkDiscovered(w http.ResponseWriter, r *http.Request) {
	mappingID := strings.TrimSpace(r.PathValue("mappingID"))
	discovered, err := h.mappings.MarkDiscovered(r.Context(), mappingID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, discovered, h.clock)
}

func (h *Handler) handleDynamicAvailability(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	changes, err := h.mappings.UpdateDynamicAvailability(r.Context(), sessionID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"changes": changes}, h.clock)
}
