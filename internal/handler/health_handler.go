package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farerules/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ruleService service.RuleService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(ruleService service.RuleService) *HealthHandler {
	return &HealthHandler{ruleService: ruleService}
}

// Liveness handles GET /healthz
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Readiness handles GET /readyz
// @Summary Readiness probe
// @Description Reports ready once the rule store is readable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.ruleService.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "rule store not readable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
