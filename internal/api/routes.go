package api

import (
	"github.com/gin-gonic/gin"

	"dispatchmap/internal/api/handlers"
	"dispatchmap/internal/api/middleware"
)

type Router struct {
	positionHandler *handlers.PositionHandler
	mapHandler      *handlers.MapHandler
	trackingHandler *handlers.TrackingHandler
}

func NewRouter(
	positionHandler *handlers.PositionHandler,
	mapHandler *handlers.MapHandler,
	trackingHandler *handlers.TrackingHandler,
) *Router {
	return &Router{
		positionHandler: positionHandler,
		mapHandler:      mapHandler,
		trackingHandler: trackingHandler,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Protected routes
	api := engine.Group("/")
	api.Use(middleware.MockAuth())
	{
		// Delivery agent endpoints
		agentRoutes := api.Group("/")
		agentRoutes.Use(middleware.RequireAgent())
		{
			agentRoutes.PATCH("/location/update", r.positionHandler.UpdatePosition)
			agentRoutes.DELETE("/location", r.positionHandler.ClearPosition)
			agentRoutes.POST("/map/refresh", r.mapHandler.Refresh)
			agentRoutes.GET("/map", r.mapHandler.Latest)
			agentRoutes.GET("/map/geojson", r.mapHandler.GeoJSON)
			agentRoutes.GET("/map/stream", r.mapHandler.Stream)
		}

		// Customer endpoints
		customerRoutes := api.Group("/orders")
		customerRoutes.Use(middleware.RequireCustomer())
		{
			customerRoutes.GET("/:id/track", r.trackingHandler.Track)
		}

		// Admin endpoints
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(middleware.RequireAdmin())
		{
			adminRoutes.GET("/agents/:agent_id/map", r.mapHandler.AgentLatest)
		}
	}
}
