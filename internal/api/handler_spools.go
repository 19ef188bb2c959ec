package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetStatus handles GET /api/status: the latest status line and the current
// spool snapshot, which the kiosk front-end polls.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.station.Snapshot())
}

// GetSpools handles GET /api/spools.
func (h *Handler) GetSpools(c *gin.Context) {
	spools, err := h.store.ListSpools(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spools"})
		return
	}
	c.JSON(http.StatusOK, spools)
}

// GetSpoolLogs handles GET /api/spools/{spool_id}/logs.
func (h *Handler) GetSpoolLogs(c *gin.Context) {
	spoolID, err := strconv.ParseInt(c.Param("spool_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid spool ID"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
	}

	logs, err := h.store.SpoolLogs(c.Request.Context(), spoolID, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// locationResponse exposes a configured location and its printable QR payload.
type locationResponse struct {
	Name string `json:"name"`
	QR   string `json:"qr"`
}

// GetLocations handles GET /api/locations: the configured location list, in
// order, so the front-end can render the printable QR sheet.
func (h *Handler) GetLocations(c *gin.Context) {
	locations := make([]locationResponse, 0, len(h.cfg.Station.Locations))
	for _, loc := range h.cfg.Station.Locations {
		locations = append(locations, locationResponse{Name: loc.Name, QR: loc.QR})
	}
	c.JSON(http.StatusOK, locations)
}
