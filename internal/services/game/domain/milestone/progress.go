// Package milestone computes milestone and campaign completion from core
// entity discovery state.
package milestone

import "github.com/lanternworks/expedition/internal/services/game/domain/entity"

// Progress sums the progress contributions of the discovered core entities
// tagged with milestoneID, clamped to [0, 100]. Authoring is supposed to make
// contributions per milestone sum to 100; the clamp keeps a data bug from
// corrupting the player-visible signal.
func Progress(coreEntities []entity.Entity, discovered func(entityID string) bool, milestoneID string) int {
	total := 0
	for _, e := range coreEntities {
		if e.MilestoneID != milestoneID {
			continue
		}
		if discovered == nil || !discovered(e.Identity()) {
			continue
		}
		total += e.ProgressContribution
	}
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// MilestoneIDs returns the distinct milestone ids referenced by core
// entities, in first-seen order.
func MilestoneIDs(coreEntities []entity.Entity) []string {
	seen := map[string]bool{}
	var ids []string
	for _, e := range coreEntities {
		if e.MilestoneID == "" || seen[e.MilestoneID] {
			continue
		}
		seen[e.MilestoneID] = true
		ids = append(ids, e.MilestoneID)
	}
	return ids
}

// CampaignCompletion aggregates per-milestone progress for a campaign.
type CampaignCompletion struct {
	TotalMilestones     int `json:"totalMilestones"`
	CompletedMilestones int `json:"completedMilestones"`
	OverallPercent      int `json:"overallPercent"`
}

// Completion rolls per-milestone progress values into campaign totals.
// A campaign with no milestones reports zero across the board.
func Completion(progressByMilestone map[string]int) CampaignCompletion {
	completion := CampaignCompletion{TotalMilestones: len(progressByMilestone)}
	if completion.TotalMilestones == 0 {
		return completion
	}
	sum := 0
	for _, progress := range progressByMilestone {
		sum += progress
		if progress >= 100 {
			completion.CompletedMilestones++
		}
	}
	completion.OverallPercent = sum / completion.TotalMilestones
	return completion
}
