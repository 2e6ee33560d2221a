// Package api exposes a Helios node's boundary interfaces over HTTP: claim
// submission, verification triggering, and ledger reads.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helios-protocol/helios/internal/claims"
	"github.com/helios-protocol/helios/internal/ledger"
	"github.com/helios-protocol/helios/internal/orchestrator"
	"go.uber.org/zap"
)

// ClaimHandler handles claim submission, lookup, and verification triggers.
type ClaimHandler struct {
	svc    *claims.Service
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(svc *claims.Service, orch *orchestrator.Orchestrator, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{svc: svc, orch: orch, logger: logger}
}

// Register mounts the claim routes on the given router group.
func (h *ClaimHandler) Register(rg *gin.RouterGroup) {
	c := rg.Group("/claims")
	{
		c.POST("", h.Submit)
		c.GET("/:id", h.GetClaim)
		c.POST("/:id/verify", h.Verify)
	}
	rg.GET("/agents", h.ListAgents)
}

// Submit handles POST /claims — appends a new claim to the ledger.
func (h *ClaimHandler) Submit(c *gin.Context) {
	var req claims.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	claim, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, claims.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("submit claim", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit claim"})
		return
	}

	heliosClaimsSubmittedTotal.Inc()
	c.JSON(http.StatusCreated, claim)
}

// GetClaim handles GET /claims/:id.
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	claim, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrClaimNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
			return
		}
		h.logger.Error("get claim", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up claim"})
		return
	}
	c.JSON(http.StatusOK, claim)
}

// verifyRequest is the optional body of POST /claims/:id/verify.
type verifyRequest struct {
	AgentID string `json:"agent_id,omitempty"`
}

// Verify handles POST /claims/:id/verify — triggers an orchestration run.
func (h *ClaimHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	claim, err := h.orch.Run(c.Request.Context(), c.Param("id"), req.AgentID)
	switch {
	case err == nil:
		heliosVerificationRunsTotal.WithLabelValues(string(claim.Status)).Inc()
		c.JSON(http.StatusOK, claim)
	case errors.Is(err, orchestrator.ErrClaimNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
	case errors.Is(err, orchestrator.ErrAgentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orchestrator.ErrNoApplicableAgent):
		heliosVerificationRunsTotal.WithLabelValues("no_applicable_agent").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, orchestrator.ErrNotVerifiable):
		// No-op notice: the claim is returned unchanged.
		heliosVerificationRunsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "claim": claim})
	default:
		h.logger.Error("verification run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification run failed"})
	}
}

// ListAgents handles GET /agents — the registered agents' identities.
func (h *ClaimHandler) ListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": h.orch.Agents()})
}
