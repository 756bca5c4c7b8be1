package rest

import (
	"net/http"
)

func (h *Handler) handleMilestoneProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progress.ComputeProgress(r.Context(), r.PathValue("campaignID"), r.PathValue("milestoneID"))
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, progress, h.clock)
}

func (h *Handler) handleCampaignCompletion(w http.ResponseWriter, r *http.Request) {
	completion, err := h.progress.ComputeCampaignCompletion(r.Context(), r.PathValue("campaignID"))
	if err != nil {
		writeError(w, err, h.clock)
		return
	}
	writeData(w, http.StatusOK, completion, h.clock)
}
