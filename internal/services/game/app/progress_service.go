package app

import (
	"context"
	"strings"

	apperrors "github.com/lanternworks/expedition/internal/platform/errors"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
	"github.com/lanternworks/expedition/internal/services/game/domain/milestone"
)

// ProgressService computes milestone progress and campaign completion from
// discovery state.
type ProgressService struct {
	stores Stores
}

// NewProgressService creates a ProgressService.
func NewProgressService(stores Stores) *ProgressService {
	return &ProgressService{stores: stores}
}

// MilestoneProgress is the per-milestone progress for a campaign.
type MilestoneProgress struct {
	CampaignID  string `json:"campaignId"`
	MilestoneID string `json:"milestoneId"`
	Percent     int    `json:"percent"`
}

// ComputeProgress computes one milestone's progress across every session
// pool in the campaign.
func (s *ProgressService) ComputeProgress(ctx context.Context, campaignID, milestoneID string) (MilestoneProgress, error) {
	milestoneID = strings.TrimSpace(milestoneID)
	if milestoneID == "" {
		return MilestoneProgress{}, apperrors.New(apperrors.CodeMilestoneIDRequired, "milestone id is required")
	}
	progressByMilestone, err := s.campaignProgress(ctx, campaignID)
	if err != nil {
		return MilestoneProgress{}, err
	}
	return MilestoneProgress{
		CampaignID:  strings.TrimSpace(campaignID),
		MilestoneID: milestoneID,
		Percent:     progressByMilestone[milestoneID],
	}, nil
}

// ComputeCampaignCompletion rolls every milestone in the campaign into
// completion totals.
func (s *ProgressService) ComputeCampaignCompletion(ctx context.Context, campaignID string) (milestone.CampaignCompletion, error) {
	progressByMilestone, err := s.campaignProgress(ctx, campaignID)
	if err != nil {
		return milestone.CampaignCompletion{}, err
	}
	return milestone.Completion(progressByMilestone), nil
}

// campaignProgress aggregates discovery-weighted progress per milestone over
// every session pool in the campaign. A milestone's progress is the maximum
// across sessions, since each session advances the same authored content.
func (s *ProgressService) campaignProgress(ctx context.Context, campaignID string) (map[string]int, error) {
	if s == nil || s.stores.Pools == nil || s.stores.Mappings == nil {
		return nil, apperrors.New(apperrors.CodeStorage, "stores are not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, apperrors.New(apperrors.CodePoolCampaignIDRequired, "campaign id is required")
	}

	pools, err := s.stores.Pools.ListPoolsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list pools", err)
	}

	progressByMilestone := map[string]int{}
	for i := range pools {
		pool := pools[i]
		mappings, err := s.stores.Mappings.ListMappingsBySession(ctx, pool.SessionID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "list mappings", err)
		}
		discovered := mapping.DiscoveredEntityIDs(mappings)
		core := pool.CoreEntities()
		for _, milestoneID := range milestone.MilestoneIDs(core) {
			percent := milestone.Progress(core, func(entityID string) bool { return discovered[entityID] }, milestoneID)
			if existing, ok := progressByMilestone[milestoneID]; !ok || percent > existing {
				progressByMilestone[milestoneID] = percent
			}
		}
	}
	return progressByMilestone, nil
}
