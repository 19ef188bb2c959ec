package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Manual actions are enqueued onto the station's command queue rather than
// applied here, so camera scans and button presses share one serialized
// pipeline. Handlers acknowledge with 202; the front-end sees the outcome on
// its next /api/status poll.

type scanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// PostScan handles POST /api/actions/scan: a hand-typed spool URL.
func (h *Handler) PostScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.station.EnqueueManualURL(req.Payload)
	c.JSON(http.StatusAccepted, gin.H{"message": "scan queued"})
}

type weighRequest struct {
	Grams *float64 `json:"grams" binding:"required,gte=0,lte=5000"`
}

// PostWeigh handles POST /api/actions/weigh.
func (h *Handler) PostWeigh(c *gin.Context) {
	var req weighRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.station.EnqueueWeigh(*req.Grams)
	c.JSON(http.StatusAccepted, gin.H{"message": "weigh queued"})
}

type moveRequest struct {
	Location string `json:"location" binding:"required"`
}

// PostMove handles POST /api/actions/move.
func (h *Handler) PostMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.station.EnqueueMove(req.Location)
	c.JSON(http.StatusAccepted, gin.H{"message": "move queued"})
}

// PostOpen handles POST /api/actions/open: open the current spool's page in
// the kiosk browser. Runs synchronously since it never touches pairing state.
func (h *Handler) PostOpen(c *gin.Context) {
	if err := h.station.OpenCurrent(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "opened"})
}
