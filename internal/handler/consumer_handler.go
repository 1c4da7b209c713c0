package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartConsumer starts the queue consumer
func (h *Handlers) StartConsumer(c *gin.Context) {
	if err := h.consumer.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "consumer_error",
			Message: "Failed to start consumer",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Consumer started successfully",
		"status":  "running",
	})
}

// StopConsumer stops the queue consumer
func (h *Handlers) StopConsumer(c *gin.Context) {
	if err := h.consumer.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "consumer_error",
			Message: "Failed to stop consumer",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Consumer stopped successfully",
		"status":  "stopped",
	})
}

// RunOnce runs one queue processing cycle
func (h *Handlers) RunOnce(c *gin.Context) {
	if err := h.consumer.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "consumer_error",
			Message: "Failed to run queue processing",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Queue processing completed successfully",
	})
}
