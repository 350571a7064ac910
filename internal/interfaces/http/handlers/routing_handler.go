package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "swap-router.backend/internal/domain/errors"
	"swap-router.backend/internal/interfaces/http/response"
	"swap-router.backend/internal/usecases"
)

// RoutingHandler exposes the multi-step routing engine.
type RoutingHandler struct {
	routing *usecases.RoutingUsecase
}

func NewRoutingHandler(routing *usecases.RoutingUsecase) *RoutingHandler {
	return &RoutingHandler{routing: routing}
}

// MultiStepQuote handles POST /swaps/multi-step-quote. Routing failures are
// typed inside the 200 response body, not transport errors.
func (h *RoutingHandler) MultiStepQuote(c *gin.Context) {
	var req usecases.MultiStepQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp := h.routing.GetMultiStepQuote(c.Request.Context(), req)
	response.Success(c, http.StatusOK, resp)
}

// Providers handles GET /swaps/providers
func (h *RoutingHandler) Providers(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"providers": h.routing.ListProviders(),
	})
}

// GraphStatus handles GET /swaps/graph/status
func (h *RoutingHandler) GraphStatus(c *gin.Context) {
	graphStats, cacheStats := h.routing.GraphStats()
	response.Success(c, http.StatusOK, gin.H{
		"graph": graphStats,
		"cache": cacheStats,
	})
}

// RebuildGraph handles POST /swaps/graph/rebuild
func (h *RoutingHandler) RebuildGraph(c *gin.Context) {
	stats := h.routing.RebuildGraph(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"graph": stats})
}
