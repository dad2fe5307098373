// controllers/telemetry_controller.go
package controllers

import (
	"net/http"

	"github.com/titorm/fodmap-facil-sub001/models"
	"github.com/titorm/fodmap-facil-sub001/services"

	"github.com/gin-gonic/gin"
)

type TelemetryController struct {
	Svc   *services.TelemetryService
	State *services.StateService
}

func NewTelemetryController(svc *services.TelemetryService, state *services.StateService) *TelemetryController {
	return &TelemetryController{Svc: svc, State: state}
}

// POST /telemetry/events
// The mobile client reports a content interaction; the user-state snapshot is
// derived server-side at record time.
func (h *TelemetryController) TrackEvent(c *gin.Context) {
	uid := c.GetUint("userID")

	var req struct {
		EventType string `json:"event_type" binding:"required"`
		ContentID string `json:"content_id" binding:"required"`
		TimeSpent int    `json:"time_spent"` // seconds
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.State.DeriveUserState(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch req.EventType {
	case models.EventContentViewed:
		h.Svc.TrackContentViewed(uid, req.ContentID, state)
	case models.EventContentExpanded:
		h.Svc.TrackContentExpanded(uid, req.ContentID, state, req.TimeSpent)
	case models.EventContentCompleted:
		h.Svc.TrackContentCompleted(uid, req.ContentID, state, req.TimeSpent)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type"})
		return
	}

	c.Status(http.StatusAccepted)
}

// POST /telemetry/sync
func (h *TelemetryController) Sync(c *gin.Context) {
	synced, err := h.Svc.SyncEvents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced})
}

// GET /telemetry/viewed
func (h *TelemetryController) GetViewed(c *gin.Context) {
	uid := c.GetUint("userID")

	ids, err := h.Svc.ViewedContentIDs(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"content_ids": ids})
}
