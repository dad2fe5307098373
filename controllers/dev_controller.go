// controllers/dev_controller.go
package controllers

import (
	"net/http"

	"github.com/titorm/fodmap-facil-sub001/services"

	"github.com/gin-gonic/gin"
)

type DevController struct {
	Push       *services.PushService
	Dispatcher *services.Dispatcher
}

func NewDevController(p *services.PushService, d *services.Dispatcher) *DevController {
	return &DevController{Push: p, Dispatcher: d}
}

type pushReq struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// PushTest sends a throwaway notification to the caller's own devices.
func (d *DevController) PushTest(c *gin.Context) {
	v, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	uid, _ := v.(uint)

	if d.Push == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push delivery not configured"})
		return
	}

	var req pushReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// sane defaults for quick tests
	if req.Title == "" {
		req.Title = "Test reminder 🔔"
	}
	if req.Body == "" {
		req.Body = "This is only a test."
	}
	if req.Data == nil {
		req.Data = map[string]string{"type": "test"}
	}

	d.Push.PushToUser(uid, req.Title, req.Body, req.Data)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ForceTick runs one dispatcher pass immediately instead of waiting for the
// next interval. Handy when testing reminder delivery end to end.
func (d *DevController) ForceTick(c *gin.Context) {
	d.Dispatcher.Tick()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
