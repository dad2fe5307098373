// controllers/washout_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/titorm/fodmap-facil-sub001/services"

	"github.com/gin-gonic/gin"
)

type WashoutController struct {
	Proto    *services.ProtocolService
	Sched    *services.SchedulerService
	Washouts services.WashoutStore
}

func NewWashoutController(proto *services.ProtocolService, sched *services.SchedulerService, washouts services.WashoutStore) *WashoutController {
	return &WashoutController{Proto: proto, Sched: sched, Washouts: washouts}
}

// POST /washouts
// Opens the washout that follows a finished test sequence and schedules its
// reminders in one go.
func (h *WashoutController) OpenWashout(c *gin.Context) {
	uid := c.GetUint("userID")

	var req struct {
		RunID          uint   `json:"run_id" binding:"required"`
		Group          string `json:"group" binding:"required"`
		FrequencyHours int    `json:"frequency_hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	period, reminders, err := h.Proto.OpenWashout(uid, req.RunID, req.Group, req.FrequencyHours)
	if err != nil {
		if errors.Is(err, services.ErrFrequencyOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"washout":        period,
		"reminder_count": len(reminders),
	})
}

// GET /washouts/:id/countdown
func (h *WashoutController) GetCountdown(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid washout id"})
		return
	}

	period, err := h.Washouts.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "washout not found"})
		return
	}

	countdown, err := h.Sched.CountdownFor(period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, countdown)
}

// DELETE /washouts/:id/reminders
func (h *WashoutController) CancelReminders(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid washout id"})
		return
	}

	if err := h.Sched.CancelReminders(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /washouts/:id/frequency
func (h *WashoutController) UpdateFrequency(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid washout id"})
		return
	}

	var req struct {
		FrequencyHours int `json:"frequency_hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminders, err := h.Sched.UpdateFrequency(uint(id), req.FrequencyHours)
	if err != nil {
		if errors.Is(err, services.ErrFrequencyOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminder_count": len(reminders)})
}
