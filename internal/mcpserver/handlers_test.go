package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test helpers ---

func newTestSetup(handler http.Handler) (*Handlers, func()) {
	ts := httptest.NewServer(handler)
	client := NewRegistryClient(Config{APIURL: ts.URL})
	return NewHandlers(client), ts.Close
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func agentJSON(owner string, skills ...string) map[string]any {
	return map[string]any{
		"ownerId": owner,
		"metadata": map[string]any{
			"name":        "translator-bot",
			"description": "translates things",
			"skills":      skills,
			"purpose":     "translation",
		},
		"registeredAt": time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

const mcpOwner = "0x1111111111111111111111111111111111111111"

// ============================================================
// Client tests
// ============================================================

func TestClient_DoRequest_HTTPError_WithAPIMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "insufficient_balance",
			"message": "Address does not hold the minimum ITLX balance",
		})
	}))
	defer ts.Close()

	client := NewRegistryClient(Config{APIURL: ts.URL})
	_, err := client.RegisterAgent(context.Background(), mcpOwner, "bot", "", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Contains(t, err.Error(), "minimum ITLX balance")
}

func TestClient_RegisterAgent_SendsPayload(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/agents", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(agentJSON(mcpOwner, "translation"))
	}))
	defer ts.Close()

	client := NewRegistryClient(Config{APIURL: ts.URL})
	_, err := client.RegisterAgent(context.Background(), mcpOwner, "translator-bot", "desc", "purpose", []string{"translation"})
	require.NoError(t, err)

	assert.Equal(t, mcpOwner, got["address"])
	assert.Equal(t, "translator-bot", got["name"])
	assert.Equal(t, []any{"translation"}, got["skills"])
}

// ============================================================
// Handler tests
// ============================================================

func TestHandleRegisterAgent(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(agentJSON(mcpOwner, "translation"))
	}))
	defer cleanup()

	result, err := h.HandleRegisterAgent(context.Background(), makeRequest(map[string]any{
		"address": mcpOwner,
		"name":    "translator-bot",
		"skills":  []any{"translation"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Registered.")
	assert.Contains(t, text, mcpOwner)
	assert.Contains(t, text, "translation")
}

func TestHandleRegisterAgent_MissingArgs(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer cleanup()

	result, err := h.HandleRegisterAgent(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.HandleRegisterAgent(context.Background(), makeRequest(map[string]any{"address": mcpOwner}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleRegisterAgent_APIError(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "already_registered",
			"message": "An agent with this address is already registered",
		})
	}))
	defer cleanup()

	result, err := h.HandleRegisterAgent(context.Background(), makeRequest(map[string]any{
		"address": mcpOwner,
		"name":    "translator-bot",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "already registered")
}

func TestHandleGetAgent(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/agents/"+mcpOwner, r.URL.Path)
		_ = json.NewEncoder(w).Encode(agentJSON(mcpOwner, "translation", "inference"))
	}))
	defer cleanup()

	result, err := h.HandleGetAgent(context.Background(), makeRequest(map[string]any{"address": mcpOwner}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "translator-bot")
	assert.Contains(t, text, "translation, inference")
}

func TestHandleGetAgentSkills(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address": mcpOwner,
			"skills":  []string{"translation"},
		})
	}))
	defer cleanup()

	result, err := h.HandleGetAgentSkills(context.Background(), makeRequest(map[string]any{"address": mcpOwner}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "translation")
}

func TestHandleFindAgentsBySkill(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "translation", r.URL.Query().Get("skill"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"skill":  "translation",
			"agents": []string{mcpOwner},
			"count":  1,
		})
	}))
	defer cleanup()

	result, err := h.HandleFindAgentsBySkill(context.Background(), makeRequest(map[string]any{"skill": "translation"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "1 agent(s)")
	assert.Contains(t, text, mcpOwner)
}

func TestHandleFindAgentsBySkill_NoResults(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"skill":  "underwater-basket-weaving",
			"agents": []string{},
			"count":  0,
		})
	}))
	defer cleanup()

	result, err := h.HandleFindAgentsBySkill(context.Background(), makeRequest(map[string]any{"skill": "underwater-basket-weaving"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No agents claim")
}

func TestHandleGetNetworkStats(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/network/stats", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalAgents": 42,
			"totalSkills": 7,
			"updatedAt":   time.Now().UTC(),
		})
	}))
	defer cleanup()

	result, err := h.HandleGetNetworkStats(context.Background(), makeRequest(nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Registered agents: 42")
	assert.Contains(t, text, "Distinct skills: 7")
}
