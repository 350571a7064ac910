package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerrors "swap-router.backend/internal/domain/errors"
	"swap-router.backend/internal/interfaces/http/response"
	"swap-router.backend/internal/usecases"
	"swap-router.backend/pkg/utils"
)

// SwapQuoteHandler exposes the send-swap quote lifecycle.
type SwapQuoteHandler struct {
	quotes *usecases.SwapQuoteUsecase
}

func NewSwapQuoteHandler(quotes *usecases.SwapQuoteUsecase) *SwapQuoteHandler {
	return &SwapQuoteHandler{quotes: quotes}
}

// Create handles POST /quotes
func (h *SwapQuoteHandler) Create(c *gin.Context) {
	var req usecases.CreateSwapQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	quote, err := h.quotes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, quote)
}

// Get handles GET /quotes/:quoteId
func (h *SwapQuoteHandler) Get(c *gin.Context) {
	quote, err := h.quotes.Get(c.Request.Context(), c.Param("quoteId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, quote)
}

// List handles GET /quotes. With ?depositAddress= it resolves a single
// quote; otherwise it pages through ACTIVE quotes.
func (h *SwapQuoteHandler) List(c *gin.Context) {
	if addr := c.Query("depositAddress"); addr != "" {
		quote, err := h.quotes.GetByDepositAddress(c.Request.Context(), addr)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, quote)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	params := utils.GetPaginationParams(page, limit)

	quotes, total, err := h.quotes.ListActive(c.Request.Context(), params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"quotes":     quotes,
		"pagination": utils.CalculateMeta(int64(total), params.Page, params.Limit),
	})
}
