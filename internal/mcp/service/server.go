// Package service hosts the MCP server over the game application services.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lanternworks/expedition/internal/mcp/domain"
	"github.com/lanternworks/expedition/internal/services/game/app"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Expedition MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Services carries the application services the MCP surface exposes.
type Services struct {
	Pools       *app.PoolService
	Mappings    *app.MappingService
	Exploration *app.ExplorationService
	Experience  *app.ExperienceService
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server over the game services.
func New(services Services) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.EntityUpsertTool(), domain.EntityUpsertHandler(services.Pools))
	mcp.AddTool(mcpServer, domain.LocationExploreTool(), domain.LocationExploreHandler(services.Mappings))
	mcp.AddTool(mcpServer, domain.ExplorationStartTool(), domain.ExplorationStartHandler(services.Exploration))
	mcp.AddTool(mcpServer, domain.SkillCheckTool(), domain.SkillCheckHandler(services.Exploration))
	mcpServer.AddResource(domain.MaskedProgressResource(), domain.MaskedProgressResourceHandler(services.Experience))

	return &Server{mcpServer: mcpServer}
}

// Run serves MCP on stdio until the context ends.
func (s *Server) Run(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return err
}
