package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerDailyBroadcast runs the daily inspiration send immediately
func (h *Handlers) TriggerDailyBroadcast(c *gin.Context) {
	if err := h.broadcaster.SendDailyInspiration(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "broadcast_error",
			Message: "Failed to send daily inspiration",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Daily inspiration broadcast completed",
	})
}

// TriggerWeeklyBroadcast runs the weekly insight send immediately
func (h *Handlers) TriggerWeeklyBroadcast(c *gin.Context) {
	if err := h.broadcaster.SendWeeklyInsights(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "broadcast_error",
			Message: "Failed to send weekly insights",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Weekly insight broadcast completed",
	})
}
