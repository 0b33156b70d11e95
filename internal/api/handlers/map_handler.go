package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchmap/internal/api/middleware"
	"dispatchmap/internal/mapexport"
	"dispatchmap/internal/services"
	"dispatchmap/internal/stream"
)

type MapHandler struct {
	mapService *services.MapService
	hub        *stream.Hub
}

func NewMapHandler(mapService *services.MapService, hub *stream.Hub) *MapHandler {
	return &MapHandler{
		mapService: mapService,
		hub:        hub,
	}
}

// Refresh handles POST /map/refresh
func (h *MapHandler) Refresh(c *gin.Context) {
	agentID := middleware.GetUserID(c)

	snapshot, err := h.mapService.Refresh(c.Request.Context(), agentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPositionUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "position_unavailable", "detail": err.Error()})
		case errors.Is(err, services.ErrSuperseded):
			c.JSON(http.StatusConflict, gin.H{"error": "superseded"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Latest handles GET /map
func (h *MapHandler) Latest(c *gin.Context) {
	h.writeLatest(c, middleware.GetUserID(c))
}

// AgentLatest handles GET /admin/agents/:agent_id/map
func (h *MapHandler) AgentLatest(c *gin.Context) {
	h.writeLatest(c, c.Param("agent_id"))
}

func (h *MapHandler) writeLatest(c *gin.Context, agentID string) {
	snapshot, err := h.mapService.Latest(c.Request.Context(), agentID)
	if err != nil {
		if errors.Is(err, services.ErrNoSnapshot) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no map for agent yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GeoJSON handles GET /map/geojson
func (h *MapHandler) GeoJSON(c *gin.Context) {
	agentID := middleware.GetUserID(c)

	snapshot, err := h.mapService.Latest(c.Request.Context(), agentID)
	if err != nil {
		if errors.Is(err, services.ErrNoSnapshot) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no map for agent yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body, err := mapexport.FeatureCollection(snapshot.Model).MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/geo+json", body)
}

// Stream handles GET /map/stream. The latest snapshot, if any, is sent as
// soon as the socket opens.
func (h *MapHandler) Stream(c *gin.Context) {
	agentID := middleware.GetUserID(c)

	initial, err := h.mapService.Latest(c.Request.Context(), agentID)
	if err != nil && !errors.Is(err, services.ErrNoSnapshot) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, agentID, initial); err != nil {
		// The upgrader has already written the error response.
		c.Error(err)
	}
}
