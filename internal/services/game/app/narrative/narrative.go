// Package narrative produces player-facing prose for exploration outcomes.
package narrative

import (
	"context"
	"fmt"
)

// Request describes one resolved action needing narration.
type Request struct {
	ActionType     string
	TargetName     string
	Approach       string
	Success        bool
	Margin         int
	DiscoveredName string
}

// Generator turns a resolved action into narration. Implementations must be
// safe for concurrent use.
type Generator interface {
	Narrate(ctx context.Context, req Request) (string, error)
}

// Static is a deterministic fallback generator used when no LLM backend is
// configured. Output is intentionally plain so the game master can rewrite it.
type Static struct{}

// Narrate implements Generator.
func (Static) Narrate(_ context.Context, req Request) (string, error) {
	target := req.TargetName
	if target == "" {
		target = "the area"
	}
	if !req.Success {
		return fmt.Sprintf("Your attempt to %s %s falls short; whatever secrets it holds stay hidden for now.", verb(req.ActionType), target), nil
	}
	if req.DiscoveredName != "" {
		return fmt.Sprintf("As you %s %s, you uncover %s.", verb(req.ActionType), target, req.DiscoveredName), nil
	}
	return fmt.Sprintf("You %s %s and come away with a clearer picture of it.", verb(req.ActionType), target), nil
}

func verb(actionType string) string {
	switch actionType {
	case "investigate":
		return "investigate"
	case "challenge":
		return "confront"
	case "interact":
		return "approach"
	default:
		return "engage"
	}
}

var _ Generator = Static{}
