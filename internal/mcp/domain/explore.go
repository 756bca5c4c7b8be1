package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lanternworks/expedition/internal/services/game/app"
)

// LocationExploreInput represents the MCP tool input for exploring a location.
type LocationExploreInput struct {
	SessionID   string `json:"session_id" jsonschema:"game session identifier"`
	LocationID  string `json:"location_id" jsonschema:"location to explore"`
	CharacterID string `json:"character_id,omitempty" jsonschema:"exploring character identifier"`
	Intensity   string `json:"intensity" jsonschema:"exploration intensity (light, thorough, exhaustive)"`
}

// DiscoveredEntity is one entity revealed by an exploration pass.
type DiscoveredEntity struct {
	EntityID string `json:"entity_id"`
	Category string `json:"category"`
}

// LocationExploreResult represents the MCP tool output for exploring a location.
type LocationExploreResult struct {
	Discovered       []DiscoveredEntity `json:"discovered" jsonschema:"entities revealed by this pass"`
	ExplorationLevel int                `json:"exploration_level" jsonschema:"discovered share of the location, 0 to 100"`
	TimeSpentMinutes int                `json:"time_spent_minutes" jsonschema:"session minutes the pass consumed"`
	IsFullyExplored  bool               `json:"is_fully_explored" jsonschema:"whether every mapped entity is discovered"`
}

// LocationExploreTool defines the MCP tool schema for location exploration.
func LocationExploreTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "location_explore",
		Description: "Runs one exploration pass over a location, discovering available entities",
	}
}

// LocationExploreHandler executes a location exploration pass.
func LocationExploreHandler(mappings *app.MappingService) mcp.ToolHandlerFor[LocationExploreInput, LocationExploreResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationExploreInput) (*mcp.CallToolResult, LocationExploreResult, error) {
		if mappings == nil {
			return nil, LocationExploreResult{}, fmt.Errorf("mapping service is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		result, err := mappings.ExploreLocation(runCtx, input.SessionID, input.LocationID, input.CharacterID, input.Intensity)
		if err != nil {
			return nil, LocationExploreResult{}, fmt.Errorf("location explore failed: %w", err)
		}

		out := LocationExploreResult{
			Discovered:       make([]DiscoveredEntity, 0, len(result.Discovered)),
			ExplorationLevel: result.ExplorationLevel,
			TimeSpentMinutes: result.TimeSpentMinutes,
			IsFullyExplored:  result.IsFullyExplored,
		}
		for _, d := range result.Discovered {
			out.Discovered = append(out.Discovered, DiscoveredEntity{
				EntityID: d.EntityID,
				Category: string(d.EntityCategory),
			})
		}
		return nil, out, nil
	}
}
