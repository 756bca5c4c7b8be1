package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lanternworks/expedition/internal/services/game/app"
)

// ExplorationStartInput represents the MCP tool input for starting an
// exploration action.
type ExplorationStartInput struct {
	SessionID         string `json:"session_id" jsonschema:"game session identifier"`
	CharacterID       string `json:"character_id" jsonschema:"acting character identifier"`
	TargetEntityID    string `json:"target_entity_id" jsonschema:"entity the action targets"`
	ActionType        string `json:"action_type" jsonschema:"investigate, challenge, interact, or custom"`
	CustomDescription string `json:"custom_description,omitempty" jsonschema:"free-form description, custom actions only"`
}

// ExplorationStartResult represents the MCP tool output for starting an
// exploration action.
type ExplorationStartResult struct {
	ExecutionID string `json:"execution_id" jsonschema:"execution identifier for follow-up calls"`
	Phase       string `json:"phase" jsonschema:"current execution phase"`
}

// ExplorationStartTool defines the MCP tool schema for starting exploration
// actions.
func ExplorationStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "exploration_start",
		Description: "Begins an exploration action against a target entity",
	}
}

// ExplorationStartHandler executes an exploration action start.
func ExplorationStartHandler(exploration *app.ExplorationService) mcp.ToolHandlerFor[ExplorationStartInput, ExplorationStartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ExplorationStartInput) (*mcp.CallToolResult, ExplorationStartResult, error) {
		if exploration == nil {
			return nil, ExplorationStartResult{}, fmt.Errorf("exploration service is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		execution, err := exploration.Start(runCtx, app.StartInput{
			SessionID:         input.SessionID,
			CharacterID:       input.CharacterID,
			TargetEntityID:    input.TargetEntityID,
			ActionType:        input.ActionType,
			CustomDescription: input.CustomDescription,
		})
		if err != nil {
			return nil, ExplorationStartResult{}, fmt.Errorf("exploration start failed: %w", err)
		}
		return nil, ExplorationStartResult{
			ExecutionID: execution.ID,
			Phase:       string(execution.Phase),
		}, nil
	}
}

// SkillCheckInput represents the MCP tool input for resolving a skill check.
type SkillCheckInput struct {
	ExecutionID  string `json:"execution_id" jsonschema:"execution to resolve"`
	CharacterID  string `json:"character_id" jsonschema:"acting character identifier"`
	SkillType    string `json:"skill_type" jsonschema:"skill the check rolls against"`
	Modifier     int    `json:"modifier,omitempty" jsonschema:"flat modifier added to the d20 roll"`
	TargetNumber int    `json:"target_number,omitempty" jsonschema:"difficulty to meet, defaults when omitted"`
	Seed         int64  `json:"seed,omitempty" jsonschema:"optional deterministic roll seed"`
}

// SkillCheckResult represents the MCP tool output for a resolved skill check.
type SkillCheckResult struct {
	Success   bool   `json:"success" jsonschema:"whether the roll met the target number"`
	RollTotal int    `json:"roll_total" jsonschema:"roll plus modifier"`
	Margin    int    `json:"margin" jsonschema:"roll total minus target number"`
	Narrative string `json:"narrative" jsonschema:"narration of the outcome"`
	Phase     string `json:"phase" jsonschema:"execution phase after resolution"`
}

// SkillCheckTool defines the MCP tool schema for skill check resolution.
func SkillCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "exploration_skill_check",
		Description: "Rolls and resolves the skill check for a pending exploration action",
	}
}

// SkillCheckHandler executes a skill check resolution.
func SkillCheckHandler(exploration *app.ExplorationService) mcp.ToolHandlerFor[SkillCheckInput, SkillCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SkillCheckInput) (*mcp.CallToolResult, SkillCheckResult, error) {
		if exploration == nil {
			return nil, SkillCheckResult{}, fmt.Errorf("exploration service is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		execution, err := exploration.ExecuteSkillCheck(runCtx, app.SkillCheckInput{
			ExecutionID:  input.ExecutionID,
			CharacterID:  input.CharacterID,
			SkillType:    input.SkillType,
			Modifier:     input.Modifier,
			TargetNumber: input.TargetNumber,
			Seed:         input.Seed,
		})
		if err != nil {
			return nil, SkillCheckResult{}, fmt.Errorf("skill check failed: %w", err)
		}
		if execution.Result == nil {
			return nil, SkillCheckResult{}, fmt.Errorf("skill check result is missing")
		}
		return nil, SkillCheckResult{
			Success:   execution.Result.Success,
			RollTotal: execution.Result.RollTotal,
			Margin:    execution.Result.Margin,
			Narrative: execution.Result.Narrative,
			Phase:     string(execution.Phase),
		}, nil
	}
}
