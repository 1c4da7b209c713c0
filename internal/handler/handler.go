package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journal-companion-go/internal/repository"
	"journal-companion-go/internal/service/broadcast"
	"journal-companion-go/internal/service/consumer"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db          *gorm.DB
	repo        *repository.Repository
	consumer    *consumer.Consumer
	broadcaster *broadcast.Broadcaster
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, repo *repository.Repository, c *consumer.Consumer, b *broadcast.Broadcaster) *Handlers {
	return &Handlers{
		db:          db,
		repo:        repo,
		consumer:    c,
		broadcaster: b,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/webhook/inbound", h.InboundWebhook)
		api.GET("/queue/status", h.GetQueueStatus)

		api.POST("/consumer/start", h.StartConsumer)
		api.POST("/consumer/stop", h.StopConsumer)
		api.POST("/consumer/run-once", h.RunOnce)

		api.GET("/users/:id/emails", h.GetUserEmails)
		api.GET("/users/:id/journal", h.GetUserJournal)

		api.POST("/broadcast/daily", h.TriggerDailyBroadcast)
		api.POST("/broadcast/weekly", h.TriggerWeeklyBroadcast)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Metrics:   make(map[string]string),
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.consumer.IsRunning() {
		response.Metrics["consumer"] = "running"
		response.Metrics["next_run"] = h.consumer.GetNextRun().Format(time.RFC3339)
		response.Metrics["last_run"] = h.consumer.GetLastRun().Format(time.RFC3339)
	} else {
		response.Metrics["consumer"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
