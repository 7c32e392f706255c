package agentreg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a typed HTTP client for the registry API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the registry at baseURL,
// e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Register submits a registration. The registry verifies the address holds
// the minimum ITLX balance before admitting it; a rejection surfaces as an
// *Error with IsBalanceRejection() == true.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodPost, "/v1/agents", nil, req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Agent fetches a registered agent by address.
func (c *Client) Agent(ctx context.Context, address string) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodGet, "/v1/agents/"+url.PathEscape(address), nil, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Skills fetches the skill tags claimed by an agent.
func (c *Client) Skills(ctx context.Context, address string) ([]string, error) {
	var resp SkillsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/agents/"+url.PathEscape(address)+"/skills", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Skills, nil
}

// AgentsBySkill lists the addresses of agents claiming a skill.
func (c *Client) AgentsBySkill(ctx context.Context, skill string) ([]string, error) {
	q := url.Values{}
	q.Set("skill", skill)

	var resp SkillQueryResponse
	if err := c.do(ctx, http.MethodGet, "/v1/agents", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// TotalAgents returns the number of registered agents.
func (c *Client) TotalAgents(ctx context.Context) (uint64, error) {
	var resp CountResponse
	if err := c.do(ctx, http.MethodGet, "/v1/agents", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.TotalAgents, nil
}

// Stats returns registry-wide statistics.
func (c *Client) Stats(ctx context.Context) (*NetworkStats, error) {
	var stats NetworkStats
	if err := c.do(ctx, http.MethodGet, "/v1/network/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return ParseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
