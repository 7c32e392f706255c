package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, verifier BalanceVerifier) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(NewMemoryStore(), verifier)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/v1"))
	return router, svc
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerBody(address string, skills ...string) map[string]any {
	return map[string]any{
		"address": address,
		"name":    "translator-bot",
		"skills":  skills,
		"purpose": "translation services",
	}
}

const handlerOwner = "0x1111111111111111111111111111111111111111"

func TestRegisterAgentEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubVerifier{outcome: BalanceSufficient})

	w := doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "translation"))
	require.Equal(t, http.StatusCreated, w.Code)

	var agent Agent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agent))
	assert.Equal(t, handlerOwner, agent.OwnerID)
	assert.Equal(t, []string{"translation"}, agent.Metadata.Skills)
}

func TestRegisterAgentEndpointErrors(t *testing.T) {
	cases := []struct {
		name       string
		verifier   BalanceVerifier
		body       map[string]any
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing body fields",
			verifier:   &stubVerifier{outcome: BalanceSufficient},
			body:       map[string]any{"address": handlerOwner},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
		{
			name:       "malformed address",
			verifier:   &stubVerifier{outcome: BalanceSufficient},
			body:       registerBody("not-an-address", "translation"),
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_address",
		},
		{
			name:       "insufficient balance",
			verifier:   &stubVerifier{outcome: BalanceInsufficient},
			body:       registerBody(handlerOwner, "translation"),
			wantStatus: http.StatusPaymentRequired,
			wantError:  "insufficient_balance",
		},
		{
			name:       "verification unavailable",
			verifier:   &stubVerifier{outcome: BalanceUnreachable, err: fmt.Errorf("rpc down")},
			body:       registerBody(handlerOwner, "translation"),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "verification_unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := setupRouter(t, tc.verifier)

			w := doJSON(t, router, http.MethodPost, "/v1/agents", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantError, resp["error"])
		})
	}
}

func TestRegisterAgentEndpointDuplicate(t *testing.T) {
	router, _ := setupRouter(t, &stubVerifier{outcome: BalanceSufficient})

	w := doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "translation"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "inference"))
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "already_registered", resp["error"])
}

func TestGetAgentEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubVerifier{outcome: BalanceSufficient})

	w := doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "translation"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/agents/"+handlerOwner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var agent Agent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agent))
	assert.Equal(t, "translator-bot", agent.Metadata.Name)

	w = doJSON(t, router, http.MethodGet, "/v1/agents/0x2222222222222222222222222222222222222222", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAgentSkillsEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubVerifier{outcome: BalanceSufficient})

	w := doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "translation", "inference"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/agents/"+handlerOwner+"/skills", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Address string   `json:"address"`
		Skills  []string `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"translation", "inference"}, resp.Skills)

	w = doJSON(t, router, http.MethodGet, "/v1/agents/0x2222222222222222222222222222222222222222/skills", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryAgentsEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubVerifier{outcome: BalanceSufficient})

	second := "0x2222222222222222222222222222222222222222"
	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "translation")).Code)
	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(second, "translation", "inference")).Code)

	// Skill filter.
	w := doJSON(t, router, http.MethodGet, "/v1/agents?skill=translation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Skill  string   `json:"skill"`
		Agents []string `json:"agents"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{handlerOwner, second}, resp.Agents)

	// Unknown skill: empty listing, not an error.
	w = doJSON(t, router, http.MethodGet, "/v1/agents?skill=unknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)

	// No filter: total count only.
	w = doJSON(t, router, http.MethodGet, "/v1/agents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var totalResp struct {
		TotalAgents uint64 `json:"totalAgents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totalResp))
	assert.Equal(t, uint64(2), totalResp.TotalAgents)
}

func TestNetworkStatsEndpoint(t *testing.T) {
	router, _ := setupRouter(t, &stubVerifier{outcome: BalanceSufficient})

	require.Equal(t, http.StatusCreated,
		doJSON(t, router, http.MethodPost, "/v1/agents", registerBody(handlerOwner, "translation")).Code)

	w := doJSON(t, router, http.MethodGet, "/v1/network/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats NetworkStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, uint64(1), stats.TotalAgents)
	assert.Equal(t, uint64(1), stats.TotalSkills)
}
