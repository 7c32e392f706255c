// Package agentreg provides the public Go client for the ITLX agent
// registry API. This is the foundation for the registry SDK.
package agentreg

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AgentMetadata describes an agent at registration time.
type AgentMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
	Purpose     string   `json:"purpose,omitempty"`
}

// Agent is one registered principal as returned by the registry.
type Agent struct {
	OwnerID      string        `json:"ownerId"`
	Metadata     AgentMetadata `json:"metadata"`
	RegisteredAt time.Time     `json:"registeredAt"`
}

// RegisterRequest is the payload for POST /v1/agents.
type RegisterRequest struct {
	Address     string   `json:"address"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Purpose     string   `json:"purpose,omitempty"`
}

// SkillsResponse is returned by GET /v1/agents/{address}/skills.
type SkillsResponse struct {
	Address string   `json:"address"`
	Skills  []string `json:"skills"`
}

// SkillQueryResponse is returned by GET /v1/agents?skill=<tag>.
type SkillQueryResponse struct {
	Skill  string   `json:"skill"`
	Agents []string `json:"agents"`
	Count  int      `json:"count"`
}

// CountResponse is returned by GET /v1/agents without a skill filter.
type CountResponse struct {
	TotalAgents uint64 `json:"totalAgents"`
}

// NetworkStats is returned by GET /v1/network/stats.
type NetworkStats struct {
	TotalAgents uint64    `json:"totalAgents"`
	TotalSkills uint64    `json:"totalSkills"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Error represents a registry error response.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsBalanceRejection reports whether the registration was refused because
// the address does not hold the minimum ITLX balance.
func (e *Error) IsBalanceRejection() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// ParseError extracts a registry error from a non-2xx response.
func ParseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		return &Error{
			StatusCode: resp.StatusCode,
			Code:       fmt.Sprintf("http_%d", resp.StatusCode),
			Message:    string(body),
		}
	}
	return apiErr
}
