package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchmap/internal/api/middleware"
	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/services"
)

type PositionHandler struct {
	positionService *services.PositionService
}

func NewPositionHandler(positionService *services.PositionService) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// UpdatePositionRequest uses pointers so that 0.0 passes the required check.
type UpdatePositionRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Accuracy  float64  `json:"accuracy"`
}

// UpdatePosition handles PATCH /location/update
func (h *PositionHandler) UpdatePosition(c *gin.Context) {
	var req UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agentID := middleware.GetUserID(c)

	position, err := h.positionService.UpdatePosition(c.Request.Context(), agentID, *req.Latitude, *req.Longitude, req.Accuracy)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCoordinate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, position)
}

// ClearPosition handles DELETE /location
func (h *PositionHandler) ClearPosition(c *gin.Context) {
	agentID := middleware.GetUserID(c)

	if err := h.positionService.ClearPosition(c.Request.Context(), agentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
