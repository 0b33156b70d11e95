package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchmap/internal/api/middleware"
	"dispatchmap/internal/orders"
	"dispatchmap/internal/services"
)

type TrackingHandler struct {
	trackingService *services.TrackingService
}

func NewTrackingHandler(trackingService *services.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// Track handles GET /orders/:id/track
func (h *TrackingHandler) Track(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	model, err := h.trackingService.Track(c.Request.Context(), customerID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrDestinationUnresolvable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, model)
}
