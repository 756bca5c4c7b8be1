package rest

import (
	"net/http"
)

func (h *Handler) handleMaskedProgress(w http.ResponseWriter, r *http.Request) {
	masked, err := h.experience.MaskedProgress(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, masked, h.clock)
}
