package controllers

import (
	"net/http"
	"strconv"

	"github.com/titorm/fodmap-facil-sub001/services"

	"github.com/gin-gonic/gin"
)

const defaultSurfacedItems = 5

type ContentController struct {
	Content *services.ContentService
	State   *services.StateService
}

func NewContentController(content *services.ContentService, state *services.StateService) *ContentController {
	return &ContentController{Content: content, State: state}
}

// GET /content/surfaced?max=N
func (h *ContentController) GetSurfaced(c *gin.Context) {
	uid := c.GetUint("userID")

	max := defaultSurfacedItems
	if v := c.Query("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'max' must be a positive integer"})
			return
		}
		max = n
	}

	state, err := h.State.DeriveUserState(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items, err := h.Content.SelectContent(state, max)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "user_state": state})
}
