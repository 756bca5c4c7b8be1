package narrative

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

const narratorSystemPrompt = "You narrate moments in a tabletop role-playing " +
	"game. Write two or three sentences of second-person prose describing the " +
	"outcome you are given. Never invent new discoveries, never reveal game " +
	"mechanics, and never mention dice or numbers."

// LLM generates narration through an any-llm-go backend, falling back to the
// static generator when the backend fails.
type LLM struct {
	backend  anyllmlib.Provider
	model    string
	fallback Static
}

// NewLLM creates an LLM generator for the given provider name. Supported
// providers are "openai", "anthropic", and "ollama"; the API key falls back
// to the provider's usual environment variable.
func NewLLM(providerName, model string, opts ...anyllmlib.Option) (*LLM, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("narrative: model is required")
	}
	var (
		backend anyllmlib.Provider
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(providerName)) {
	case "openai":
		backend, err = anyllmoai.New(opts...)
	case "anthropic":
		backend, err = anthropic.New(opts...)
	case "ollama":
		backend, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("narrative: unsupported provider %q", providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("narrative: create %q backend: %w", providerName, err)
	}
	return &LLM{backend: backend, model: model}, nil
}

// Narrate implements Generator.
func (g *LLM) Narrate(ctx context.Context, req Request) (string, error) {
	if g == nil || g.backend == nil {
		return Static{}.Narrate(ctx, req)
	}

	resp, err := g.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model: g.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: narratorSystemPrompt},
			{Role: anyllmlib.RoleUser, Content: prompt(req)},
		},
	})
	if err != nil {
		return g.fallback.Narrate(ctx, req)
	}
	if len(resp.Choices) == 0 {
		return g.fallback.Narrate(ctx, req)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.ContentString())
	if content == "" {
		return g.fallback.Narrate(ctx, req)
	}
	return content, nil
}

func prompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Action: %s\n", req.ActionType)
	if req.TargetName != "" {
		fmt.Fprintf(&sb, "Target: %s\n", req.TargetName)
	}
	if req.Approach != "" {
		fmt.Fprintf(&sb, "Player approach: %s\n", req.Approach)
	}
	if req.Success {
		sb.WriteString("Outcome: success\n")
		if req.DiscoveredName != "" {
			fmt.Fprintf(&sb, "Discovered: %s\n", req.DiscoveredName)
		}
	} else {
		sb.WriteString("Outcome: failure\n")
	}
	return sb.String()
}

var _ Generator = (*LLM)(nil)
