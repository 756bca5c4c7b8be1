package rest

import (
	"net/http"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/app"
	"github.com/lanternworks/expedition/internal/telemetry"
)

// Handler serves the game HTTP API.
type Handler struct {
	pools       *app.PoolService
	mappings    *app.MappingService
	exploration *app.ExplorationService
	progress    *app.ProgressService
	experience  *app.ExperienceService
	events      *telemetry.Emitter
	clock       func() time.Time
}

// NewHandler creates a Handler over the application services.
func NewHandler(
	pools *app.PoolService,
	mappings *app.MappingService,
	exploration *app.ExplorationService,
	progress *app.ProgressService,
	experience *app.ExperienceService,
	events *telemetry.Emitter,
) *Handler {
	return &Handler{
		pools:       pools,
		mappings:    mappings,
		exploration: exploration,
		progress:    progress,
		experience:  experience,
		events:      events,
		clock:       time.Now,
	}
}

// Register wires every route onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(http.MethodGet+" /healthz", h.handleHealthz)

	mux.HandleFunc(http.MethodGet+" /entity-pool/{sessionID}", h.handleGetPool)
	mux.HandleFunc(http.MethodGet+" /entity-pool/campaign/{campaignID}", h.handleListPoolsByCampaign)
	mux.HandleFunc(http.MethodPost+" /entity-pool/{sessionID}", h.handleCreatePool)
	mux.HandleFunc(http.MethodPut+" /entity-pool/{sessionID}/entity", h.handleUpsertEntity)
	mux.HandleFunc(http.MethodPost+" /entity-pool/{sessionID}/entity", h.handleUpsertEntity)
	mux.HandleFunc(http.MethodDelete+" /entity-pool/{sessionID}/entity", h.handleRemoveEntity)
	mux.HandleFunc(http.MethodDelete+" /entity-pool/{sessionID}/entities/bulk", h.handleBulkRemove)

	mux.HandleFunc(http.MethodPost+" /create-mappings", h.handleCreateMappings)
	mux.HandleFunc(http.MethodGet+" /location/{locationID}/entities", h.handleLocationEntities)
	mux.HandleFunc(http.MethodGet+" /location/{locationID}/exploration-level", h.handleExplorationLevel)
	mux.HandleFunc(http.MethodPost+" /location/{locationID}/explore", h.handleExploreLocation)
	mux.HandleFunc(http.MethodPatch+" /mappings/{mappingID}/availability", h.handleUpdateAvailability)
	mux.HandleFunc(http.MethodPatch+" /mappings/{mappingID}/discover", h.handleMarkDiscovered)
	mux.HandleFunc(http.MethodPut+" /session/{sessionID}/update-dynamic-availability", h.handleDynamicAvailability)
	mux.HandleFunc(http.MethodGet+" /session/{sessionID}/telemetry", h.handleSessionTelemetry)

	mux.HandleFunc(http.MethodPost+" /exploration/start", h.handleStartExploration)
	mux.HandleFunc(http.MethodPost+" /exploration/user-input", h.handleUserInput)
	mux.HandleFunc(http.MethodPost+" /exploration/skill-check", h.handleSkillCheck)
	mux.HandleFunc(http.MethodGet+" /exploration/{executionID}", h.handleGetExecution)

	mux.HandleFunc(http.MethodGet+" /milestones/campaign/{campaignID}/progress/{milestoneID}", h.handleMilestoneProgress)
	mux.HandleFunc(http.MethodGet+" /milestones/campaign/{campaignID}/completion", h.handleCampaignCompletion)

	mux.HandleFunc(http.MethodGet+" /player-experience/session/{sessionID}/masked-progress", h.handleMaskedProgress)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"}, h.clock)
}
