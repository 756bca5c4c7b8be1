package rest

import (
	"net/http"
	"strings"

	"github.com/lanternworks/expedition/internal/services/game/app"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
)

func (h *Handler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	pool, err := h.pools.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, pool, h.clock)
}

func (h *Handler) handleListPoolsByCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := strings.TrimSpace(r.PathValue("campaignID"))
	pools, err := h.pools.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, pools, h.clock)
}

type createPoolRequest struct {
	CampaignID string `json:"campaignId"`
	ThemeID    string `json:"themeId,omitempty"`
}

func (h *Handler) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req createPoolRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	pool, err := h.pools.CreateIfAbsent(r.Context(), sessionID, req.CampaignID, req.ThemeID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusCreated, pool, h.clock)
}

type upsertEntityRequest struct {
	CampaignID     string        `json:"campaignId,omitempty"`
	EntityKind     string        `json:"entityType"`
	Category       string        `json:"category"`
	Entity         entity.Entity `json:"entity"`
	CreateIfAbsent bool          `json:"createIfAbsent,omitempty"`
}

func (h *Handler) handleUpsertEntity(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req upsertEntityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	kind, err := entity.ParseKind(req.EntityKind)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	category, err := entity.ParseCategory(req.Category)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	stored, err := h.pools.UpsertEntity(r.Context(), sessionID, req.CampaignID, kind, category, req.Entity, req.CreateIfAbsent)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, stored, h.clock)
}

type removeEntityRequest struct {
	Category string `json:"category"`
	EntityID string `json:"entityId"`
}

func (h *Handler) handleRemoveEntity(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req removeEntityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	category, err := entity.ParseCategory(req.Category)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	removed, err := h.pools.RemoveEntity(r.Context(), sessionID, category, req.EntityID)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, removed, h.clock)
}

type bulkRemoveEntry struct {
	EntityKind string `json:"entityType"`
	Category   string `json:"category"`
	EntityID   string `json:"entityId"`
}

type bulkRemoveRequest struct {
	Entities []bulkRemoveEntry `json:"entities"`
}

func (h *Handler) handleBulkRemove(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req bulkRemoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, h.clock)
		return
	}
	refs := make([]app.RemoveRef, 0, len(req.Entities))
	for _, e := range req.Entities {
		kind, err := entity.ParseKind(e.EntityKind)
		if err != nil {
			writeError(w, err, h.clock)
			return
		}
		category, err := entity.ParseCategory(e.Category)
		if err != nil {
			writeError(w, err, h.clock)
			return
		}
		refs = append(refs, app.RemoveRef{Kind: kind, Category: category, EntityID: e.EntityID})
	}
	result, err := h.pools.BulkRemove(r.Context(), sessionID, refs)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, result, h.clock)
}
