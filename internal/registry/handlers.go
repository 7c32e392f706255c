package registry

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itlx-network/agentreg/internal/logging"
	"github.com/itlx-network/agentreg/internal/validation"
)

// Handler provides HTTP handlers for the registry API
type Handler struct {
	svc *Service
}

// NewHandler creates a new registry handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up the registry routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/agents", h.RegisterAgent)
	r.GET("/agents", h.GetAgentsBySkill)
	r.GET("/agents/:address", h.GetAgent)
	r.GET("/agents/:address/skills", h.GetAgentSkills)
	r.GET("/network/stats", h.GetNetworkStats)
}

// RegisterAgent handles POST /agents
func (h *Handler) RegisterAgent(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.L(ctx)

	var req RegisterAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if !validation.IsValidAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_address",
			"message": "address must be a valid wallet address (0x + 40 hex chars)",
		})
		return
	}

	metadata := AgentMetadata{
		Name:        req.Name,
		Description: req.Description,
		Skills:      req.Skills,
		Purpose:     req.Purpose,
	}

	agent, err := h.svc.Register(ctx, req.Address, metadata)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMetadata):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_metadata",
				"message": err.Error(),
			})
		case errors.Is(err, ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already_registered",
				"message": "An agent with this address is already registered",
			})
		case errors.Is(err, ErrInsufficientBalance):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":   "insufficient_balance",
				"message": "Address does not hold the minimum ITLX balance",
			})
		case errors.Is(err, ErrVerificationUnavailable):
			// Retryable: nothing was written.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "verification_unavailable",
				"message": "Balance verification is temporarily unavailable, retry later",
			})
		default:
			logger.Error("registration failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to register agent",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, agent)
}

// GetAgent handles GET /agents/:address
func (h *Handler) GetAgent(c *gin.Context) {
	ctx := c.Request.Context()

	agent, err := h.svc.GetAgent(ctx, c.Param("address"))
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Agent not found",
			})
			return
		}
		logging.L(ctx).Error("failed to get agent", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get agent",
		})
		return
	}

	c.JSON(http.StatusOK, agent)
}

// GetAgentSkills handles GET /agents/:address/skills
func (h *Handler) GetAgentSkills(c *gin.Context) {
	ctx := c.Request.Context()

	skills, err := h.svc.GetAgentSkills(ctx, c.Param("address"))
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Agent not found",
			})
			return
		}
		logging.L(ctx).Error("failed to get agent skills", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get agent skills",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": c.Param("address"),
		"skills":  skills,
	})
}

// GetAgentsBySkill handles GET /agents?skill=<tag>
// Without a skill filter it returns only the total count, not a listing;
// the registry has no enumeration surface.
func (h *Handler) GetAgentsBySkill(c *gin.Context) {
	ctx := c.Request.Context()

	skill := c.Query("skill")
	if skill == "" {
		total, err := h.svc.GetTotalAgents(ctx)
		if err != nil {
			logging.L(ctx).Error("failed to get total agents", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to get total agents",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalAgents": total})
		return
	}

	owners, err := h.svc.GetAgentsBySkill(ctx, skill)
	if err != nil {
		logging.L(ctx).Error("failed to query skill", "skill", skill, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to query agents by skill",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skill":  skill,
		"agents": owners,
		"count":  len(owners),
	})
}

// GetNetworkStats handles GET /network/stats
func (h *Handler) GetNetworkStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.svc.GetStats(ctx)
	if err != nil {
		logging.L(ctx).Error("failed to get network stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get network stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
