package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxPayloadBytes bounds the inbound webhook body size
const maxPayloadBytes = 10 << 20

// InboundWebhook accepts an inbound email payload in any of the provider
// shapes and enqueues it for asynchronous processing. The payload is stored
// verbatim; interpretation happens in the consumer.
func (h *Handlers) InboundWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to read request body",
			Code:    http.StatusBadRequest,
		})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Request body is empty",
			Code:    http.StatusBadRequest,
		})
		return
	}

	item, err := h.repo.EnqueuePayload(body)
	if err != nil {
		logrus.Errorf("Failed to enqueue inbound payload: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "queue_error",
			Message: "Failed to enqueue payload",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusAccepted, WebhookResponse{
		ItemID:  item.ID,
		Status:  item.Status,
		Message: "Payload accepted for processing",
	})
}

// GetQueueStatus reports the pending queue depth and consumer state
func (h *Handlers) GetQueueStatus(c *gin.Context) {
	pending, err := h.repo.CountPendingItems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "queue_error",
			Message: "Failed to count pending items",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	status := QueueStatusResponse{
		PendingItems: pending,
		Consumer:     "stopped",
	}
	if h.consumer.IsRunning() {
		status.Consumer = "running"
		status.NextRun = h.consumer.GetNextRun()
		status.LastRun = h.consumer.GetLastRun()
	}

	c.JSON(http.StatusOK, status)
}
