package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *RegistryClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *RegistryClient) *Handlers {
	return &Handlers{client: client}
}

// HandleRegisterAgent submits a one-shot registration.
func (h *Handlers) HandleRegisterAgent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address := req.GetString("address", "")
	if address == "" {
		return mcp.NewToolResultError("address is required"), nil
	}
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	description := req.GetString("description", "")
	purpose := req.GetString("purpose", "")

	var skills []string
	if raw := req.GetArguments()["skills"]; raw != nil {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					skills = append(skills, s)
				}
			}
		}
	}

	raw, err := h.client.RegisterAgent(ctx, address, name, description, purpose, skills)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Registration failed: %v", err)), nil
	}

	text, err := formatAgent(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse agent: %v", err)), nil
	}

	return mcp.NewToolResultText("Registered.\n\n" + text), nil
}

// HandleGetAgent looks up an agent by address.
func (h *Handlers) HandleGetAgent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address := req.GetString("address", "")
	if address == "" {
		return mcp.NewToolResultError("address is required"), nil
	}

	raw, err := h.client.GetAgent(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get agent: %v", err)), nil
	}

	text, err := formatAgent(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse agent: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetAgentSkills returns the skill tags for an agent.
func (h *Handlers) HandleGetAgentSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address := req.GetString("address", "")
	if address == "" {
		return mcp.NewToolResultError("address is required"), nil
	}

	raw, err := h.client.GetAgentSkills(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get skills: %v", err)), nil
	}

	var resp struct {
		Address string   `json:"address"`
		Skills  []string `json:"skills"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse skills: %v", err)), nil
	}

	if len(resp.Skills) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%s claims no skills.", resp.Address)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s claims: %s", resp.Address, strings.Join(resp.Skills, ", "))), nil
}

// HandleFindAgentsBySkill lists agents claiming a skill.
func (h *Handlers) HandleFindAgentsBySkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skill := req.GetString("skill", "")
	if skill == "" {
		return mcp.NewToolResultError("skill is required"), nil
	}

	raw, err := h.client.FindAgentsBySkill(ctx, skill)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search: %v", err)), nil
	}

	var resp struct {
		Skill  string   `json:"skill"`
		Agents []string `json:"agents"`
		Count  int      `json:"count"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse results: %v", err)), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No agents claim the skill %q.", skill)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d agent(s) claim %q:\n", resp.Count, skill)
	for _, addr := range resp.Agents {
		fmt.Fprintf(&sb, "  %s\n", addr)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleGetNetworkStats returns registry-wide statistics.
func (h *Handlers) HandleGetNetworkStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetNetworkStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get stats: %v", err)), nil
	}

	var stats struct {
		TotalAgents uint64    `json:"totalAgents"`
		TotalSkills uint64    `json:"totalSkills"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse stats: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Registered agents: %d\nDistinct skills: %d\nAs of: %s",
		stats.TotalAgents, stats.TotalSkills, stats.UpdatedAt.Format(time.RFC3339))), nil
}

// formatAgent renders an agent record as readable text.
func formatAgent(raw json.RawMessage) (string, error) {
	var agent struct {
		OwnerID  string `json:"ownerId"`
		Metadata struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Skills      []string `json:"skills"`
			Purpose     string   `json:"purpose"`
		} `json:"metadata"`
		RegisteredAt time.Time `json:"registeredAt"`
	}
	if err := json.Unmarshal(raw, &agent); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Agent: %s\n", agent.Metadata.Name)
	fmt.Fprintf(&sb, "Address: %s\n", agent.OwnerID)
	if agent.Metadata.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", agent.Metadata.Description)
	}
	if agent.Metadata.Purpose != "" {
		fmt.Fprintf(&sb, "Purpose: %s\n", agent.Metadata.Purpose)
	}
	if len(agent.Metadata.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(agent.Metadata.Skills, ", "))
	}
	fmt.Fprintf(&sb, "Registered: %s", agent.RegisteredAt.Format(time.RFC3339))
	return sb.String(), nil
}
