package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard handles GET /dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}

	dashboard, err := h.Dashboard.GetDashboard(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
