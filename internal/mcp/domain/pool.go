// Package domain defines the MCP tool and resource schemas for the
// expedition game services, plus the handlers that execute them.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lanternworks/expedition/internal/services/game/app"
	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
)

// toolTimeout bounds every tool invocation.
const toolTimeout = 5 * time.Second

// EntityUpsertInput represents the MCP tool input for pool entity upserts.
type EntityUpsertInput struct {
	SessionID            string `json:"session_id" jsonschema:"game session identifier"`
	CampaignID           string `json:"campaign_id" jsonschema:"campaign identifier, used when the pool must be created"`
	EntityType           string `json:"entity_type" jsonschema:"core or bonus"`
	Category             string `json:"category" jsonschema:"entity category (enemy, event, npc, item, quest, practical, trophy, mystery)"`
	EntityID             string `json:"entity_id" jsonschema:"stable entity identifier"`
	Name                 string `json:"name" jsonschema:"entity display name"`
	Description          string `json:"description,omitempty" jsonschema:"optional entity description"`
	MilestoneID          string `json:"milestone_id,omitempty" jsonschema:"milestone the entity advances, core entities only"`
	ProgressContribution int    `json:"progress_contribution,omitempty" jsonschema:"milestone percentage points the entity is worth"`
	CreateIfAbsent       bool   `json:"create_if_absent,omitempty" jsonschema:"create the pool when it does not exist yet"`
}

// EntityUpsertResult represents the MCP tool output for pool entity upserts.
type EntityUpsertResult struct {
	EntityID string `json:"entity_id" jsonschema:"stored entity identifier"`
	Name     string `json:"name" jsonschema:"stored entity name"`
	Category string `json:"category" jsonschema:"stored entity category"`
}

// EntityUpsertTool defines the MCP tool schema for pool entity upserts.
func EntityUpsertTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_upsert",
		Description: "Adds or updates one entity in a session's discoverable pool",
	}
}

// EntityUpsertHandler executes a pool entity upsert.
func EntityUpsertHandler(pools *app.PoolService) mcp.ToolHandlerFor[EntityUpsertInput, EntityUpsertResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EntityUpsertInput) (*mcp.CallToolResult, EntityUpsertResult, error) {
		if pools == nil {
			return nil, EntityUpsertResult{}, fmt.Errorf("pool service is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		kind, err := entity.ParseKind(input.EntityType)
		if err != nil {
			return nil, EntityUpsertResult{}, err
		}
		category, err := entity.ParseCategory(input.Category)
		if err != nil {
			return nil, EntityUpsertResult{}, err
		}

		stored, err := pools.UpsertEntity(runCtx, input.SessionID, input.CampaignID, kind, category, entity.Entity{
			ID:                   input.EntityID,
			Name:                 input.Name,
			Category:             category,
			Description:          input.Description,
			MilestoneID:          input.MilestoneID,
			ProgressContribution: input.ProgressContribution,
		}, input.CreateIfAbsent)
		if err != nil {
			return nil, EntityUpsertResult{}, fmt.Errorf("entity upsert failed: %w", err)
		}

		return nil, EntityUpsertResult{
			EntityID: stored.Identity(),
			Name:     stored.Name,
			Category: string(stored.Category),
		}, nil
	}
}
