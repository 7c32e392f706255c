package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all registry tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("agentreg", "1.0.0")
	client := NewRegistryClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolRegisterAgent, h.HandleRegisterAgent)
	s.AddTool(ToolGetAgent, h.HandleGetAgent)
	s.AddTool(ToolGetAgentSkills, h.HandleGetAgentSkills)
	s.AddTool(ToolFindAgentsBySkill, h.HandleFindAgentsBySkill)
	s.AddTool(ToolGetNetworkStats, h.HandleGetNetworkStats)

	return s
}
