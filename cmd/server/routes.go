package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swap-router.backend/internal/interfaces/http/handlers"
	"swap-router.backend/internal/interfaces/http/middleware"
	"swap-router.backend/internal/interfaces/ws"
)

type routeDeps struct {
	swapQuoteHandler *handlers.SwapQuoteHandler
	routingHandler   *handlers.RoutingHandler
	hub              *ws.Hub
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Send-swap quote lifecycle
		quotes := v1.Group("/quotes")
		{
			quotes.POST("", middleware.IdempotencyMiddleware(), d.swapQuoteHandler.Create)
			quotes.GET("", d.swapQuoteHandler.List)
			quotes.GET("/:quoteId", d.swapQuoteHandler.Get)
		}

		// Routing engine
		swaps := v1.Group("/swaps")
		{
			swaps.POST("/multi-step-quote", d.routingHandler.MultiStepQuote)
			swaps.GET("/providers", d.routingHandler.Providers)
			swaps.GET("/graph/status", d.routingHandler.GraphStatus)
			swaps.POST("/graph/rebuild", d.routingHandler.RebuildGraph)
		}
	}

	// Quote lifecycle push channel
	r.GET("/ws", d.hub.Subscribe)
}
