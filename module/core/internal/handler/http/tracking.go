package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

type sessionManager interface {
	Start(cfg domain.TrackingConfig) (string, error)
	Stop()
	AddGeofence(b domain.GeofenceBoundary) error
	RemoveGeofence(id string)
	OptimizeRoute(stops []domain.Stop, start domain.Coordinate, opts domain.RouteOptions) (*domain.OptimizedRoute, error)
	Export() *domain.SessionExport
	Stats() domain.TrackingStatistics
}

// TrackingHandler exposes the session control plane over HTTP.
type TrackingHandler struct {
	sessions sessionManager
}

func NewTrackingHandler(sessions sessionManager) *TrackingHandler {
	return &TrackingHandler{sessions: sessions}
}

func (h *TrackingHandler) Register(r *gin.RouterGroup) {
	r.POST("/tracking/start", h.StartTracking)
	r.POST("/tracking/stop", h.StopTracking)
	r.GET("/tracking/stats", h.GetStats)
	r.GET("/tracking/export", h.ExportSession)
	r.POST("/geofences", h.AddGeofence)
	r.DELETE("/geofences/:geofence_id", h.RemoveGeofence)
	r.POST("/routes/optimize", h.OptimizeRoute)
}

func (h *TrackingHandler) StartTracking(c *gin.Context) {
	var cfg domain.TrackingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracking config"})
		return
	}

	sessionID, err := h.sessions.Start(cfg)
	if err != nil {
		if errors.Is(err, domain.ErrSessionActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start tracking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

func (h *TrackingHandler) StopTracking(c *gin.Context) {
	h.sessions.Stop()
	c.Status(http.StatusNoContent)
}

func (h *TrackingHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Stats())
}

func (h *TrackingHandler) ExportSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Export())
}

type addGeofenceRequest struct {
	ID        string            `json:"id" binding:"required"`
	Latitude  float64           `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64           `json:"longitude" binding:"min=-180,max=180"`
	RadiusM   float64           `json:"radius_meters" binding:"required,gt=0"`
	Kind      string            `json:"kind"`
	Metadata  map[string]string `json:"metadata"`
}

func (h *TrackingHandler) AddGeofence(c *gin.Context) {
	var req addGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geofence"})
		return
	}

	boundary := domain.GeofenceBoundary{
		ID:       req.ID,
		Center:   domain.Coordinate{Lat: req.Latitude, Lon: req.Longitude},
		RadiusM:  req.RadiusM,
		Kind:     req.Kind,
		Metadata: req.Metadata,
	}
	if err := h.sessions.AddGeofence(boundary); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

func (h *TrackingHandler) RemoveGeofence(c *gin.Context) {
	h.sessions.RemoveGeofence(c.Param("geofence_id"))
	c.Status(http.StatusNoContent)
}

type optimizeRequest struct {
	Stops []struct {
		ID        string  `json:"id" binding:"required"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"stops"`
	Start struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"start"`
	Options domain.RouteOptions `json:"options"`
}

func (h *TrackingHandler) OptimizeRoute(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid optimization request"})
		return
	}

	stops := make([]domain.Stop, len(req.Stops))
	for i, s := range req.Stops {
		stops[i] = domain.Stop{
			ID:       s.ID,
			Location: domain.Coordinate{Lat: s.Latitude, Lon: s.Longitude},
		}
	}
	start := domain.Coordinate{Lat: req.Start.Latitude, Lon: req.Start.Longitude}

	route, err := h.sessions.OptimizeRoute(stops, start, req.Options)
	if err != nil {
		if errors.Is(err, domain.ErrNoStops) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to optimize route"})
		return
	}

	c.JSON(http.StatusOK, route)
}
