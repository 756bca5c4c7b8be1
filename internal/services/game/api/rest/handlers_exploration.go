package rest

import (
	"net/http"

	"github.com/lanternworks/expedition/internal/services/game/app"
)

func (h *Handler) handleStartExploration(w http.ResponseWriter, r *http.Request) {
	var in app.StartInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err, h.clock)
		return
	}
	execution, err := h.exploration.Start(r.Context(), in)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusCreated, execution, h.clock)
}

func (h *Handler) handleUserInput(w http.ResponseWriter, r *http.Request) {
	var in app.UserInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err, h.clock)
		return
	}
	result, err := h.exploration.ProvideUserInput(r.Context(), in)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, result, h.clock)
}

func (h *Handler) handleSkillCheck(w http.ResponseWriter, r *http.Request) {
	var in app.SkillCheckInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err, h.clock)
		return
	}
	execution, err := h.exploration.ExecuteSkillCheck(r.Context(), in)
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, execution, h.clock)
}

func (h *Handler) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	execution, err := h.exploration.Get(r.Context(), r.PathValue("executionID"))
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, execution, h.clock)
}
