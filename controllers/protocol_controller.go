// controllers/protocol_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/titorm/fodmap-facil-sub001/services"
	"github.com/titorm/fodmap-facil-sub001/utils"

	"github.com/gin-gonic/gin"
)

type ProtocolController struct {
	Svc *services.ProtocolService
}

func NewProtocolController(svc *services.ProtocolService) *ProtocolController {
	return &ProtocolController{Svc: svc}
}

// GET /protocol/:group
func (h *ProtocolController) GetProtocol(c *gin.Context) {
	proto := services.GetProtocol(c.Param("group"))
	if proto.TestDurationDays == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown FODMAP group"})
		return
	}
	c.JSON(http.StatusOK, proto)
}

// GET /protocol/:group/portion?day=N
func (h *ProtocolController) GetSuggestedPortion(c *gin.Context) {
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid 'day' query param"})
		return
	}

	portion, ok := services.SuggestedPortion(c.Param("group"), day)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"day": day, "portion": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "portion": portion})
}

// POST /runs
func (h *ProtocolController) StartRun(c *gin.Context) {
	uid := c.GetUint("userID")

	run, err := h.Svc.StartRun(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, run)
}

// PUT /runs/:id/phase
func (h *ProtocolController) BeginReintroduction(c *gin.Context) {
	uid := c.GetUint("userID")
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	var req struct {
		Group string `json:"group" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.Svc.BeginReintroduction(uid, uint(runID), req.Group)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// POST /runs/:id/steps
func (h *ProtocolController) AddTestStep(c *gin.Context) {
	uid := c.GetUint("userID")
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	var req struct {
		Group     string `json:"group" binding:"required"`
		FoodItem  string `json:"food_item" binding:"required"`
		DayNumber int    `json:"day_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	step, err := h.Svc.AddTestStep(uid, uint(runID), req.Group, req.FoodItem, req.DayNumber)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Result.Errors})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, step)
}

// POST /steps/:id/symptoms
func (h *ProtocolController) LogSymptom(c *gin.Context) {
	uid := c.GetUint("userID")
	stepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step id"})
		return
	}

	// The client sends either a raw 1..10 score or one of the ordinal
	// severity names; the name is converted to its representative score.
	var req struct {
		Name     string `json:"name" binding:"required"`
		Score    int    `json:"score"` // 1..10
		Severity string `json:"severity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score := req.Score
	if req.Severity != "" {
		sev, ok := utils.ParseSeverity(req.Severity)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity level"})
			return
		}
		score = utils.ScoreFromSeverity(sev)
	}

	entry, err := h.Svc.LogSymptom(uid, uint(stepID), req.Name, score)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// PUT /steps/:id/complete
func (h *ProtocolController) CompleteStep(c *gin.Context) {
	uid := c.GetUint("userID")
	stepID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step id"})
		return
	}

	step, err := h.Svc.CompleteStep(uid, uint(stepID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "step not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":         step,
		"can_progress": services.CanProgressToNextGroup(*step),
	})
}

// GET /runs/:id/tolerance
func (h *ProtocolController) GetTolerance(c *gin.Context) {
	uid := c.GetUint("userID")
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	report, err := h.Svc.ToleranceReport(uid, uint(runID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tolerances": report})
}

// GET /runs/:id/recommendations
func (h *ProtocolController) GetRecommendations(c *gin.Context) {
	uid := c.GetUint("userID")
	runID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	recs, err := h.Svc.Recommendations(uid, uint(runID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}
