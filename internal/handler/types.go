package handler

import "time"

// WebhookResponse acknowledges an accepted inbound payload
type WebhookResponse struct {
	ItemID  uint   `json:"item_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// QueueStatusResponse reports the queue depth and consumer state
type QueueStatusResponse struct {
	PendingItems int64     `json:"pending_items"`
	Consumer     string    `json:"consumer"`
	NextRun      time.Time `json:"next_run,omitempty"`
	LastRun      time.Time `json:"last_run,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
