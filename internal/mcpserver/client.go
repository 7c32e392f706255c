package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the configuration for connecting to the registry API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// RegistryClient is a pure HTTP client for the registry API.
type RegistryClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewRegistryClient creates a new client for the registry API.
func NewRegistryClient(cfg Config) *RegistryClient {
	return &RegistryClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the registry.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the registry and returns the response body.
func (c *RegistryClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// RegisterAgent submits a registration for the given address.
func (c *RegistryClient) RegisterAgent(ctx context.Context, address, name, description, purpose string, skills []string) (json.RawMessage, error) {
	body := map[string]any{
		"address":     address,
		"name":        name,
		"description": description,
		"purpose":     purpose,
		"skills":      skills,
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/agents", nil, body)
}

// GetAgent fetches a registered agent by address.
func (c *RegistryClient) GetAgent(ctx context.Context, address string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/agents/"+address, nil, nil)
}

// GetAgentSkills fetches the skill tags for an agent.
func (c *RegistryClient) GetAgentSkills(ctx context.Context, address string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/agents/"+address+"/skills", nil, nil)
}

// FindAgentsBySkill lists agents claiming a skill.
func (c *RegistryClient) FindAgentsBySkill(ctx context.Context, skill string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("skill", skill)
	return c.doRequest(ctx, http.MethodGet, "/v1/agents", q, nil)
}

// GetNetworkStats returns registry-wide statistics.
func (c *RegistryClient) GetNetworkStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/network/stats", nil, nil)
}
