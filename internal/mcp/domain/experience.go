package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lanternworks/expedition/internal/services/game/app"
)

// maskedProgressScheme prefixes masked progress resource URIs; the session id
// follows as the host segment.
const maskedProgressScheme = "masked-progress://"

// MaskedProgressResource defines the MCP resource for player-safe progress.
func MaskedProgressResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "masked_progress",
		Title:       "Masked exploration progress",
		Description: "Player-safe view of a session's exploration progress, read as masked-progress://{session_id}",
		MIMEType:    "application/json",
		URI:         maskedProgressScheme + "{session_id}",
	}
}

// MaskedProgressResourceHandler serves the masked progress view for the
// session named in the request URI.
func MaskedProgressResourceHandler(experience *app.ExperienceService) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if experience == nil {
			return nil, fmt.Errorf("experience service is not configured")
		}

		var uri string
		if req != nil && req.Params != nil {
			uri = req.Params.URI
		}
		sessionID := strings.TrimPrefix(uri, maskedProgressScheme)
		if sessionID == "" || sessionID == uri {
			return nil, fmt.Errorf("resource URI must look like %s{session_id}", maskedProgressScheme)
		}

		runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		masked, err := experience.MaskedProgress(runCtx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("masked progress failed: %w", err)
		}
		data, err := json.Marshal(masked)
		if err != nil {
			return nil, fmt.Errorf("encode masked progress: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
