// Package consumer polls the persisted queue and drives each pending item
// through normalization and processing.
package consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/config"
	metricsPkg "journal-companion-go/internal/metrics"
	"journal-companion-go/internal/model"
	"journal-companion-go/internal/service/dedup"
	"journal-companion-go/internal/service/normalize"
)

// Store is the queue persistence surface the consumer needs
type Store interface {
	GetNextPendingItem() (*model.QueueItem, error)
	MarkItemProcessing(id uint) error
	MarkItemCompleted(id uint) error
	MarkItemFailed(id uint, reason string) error
	IncrementItemAttempts(id uint, lastError string) error
	CountPendingItems() (int64, error)
}

// Processor handles one normalized message
type Processor interface {
	ProcessIncoming(ctx context.Context, msg *normalize.Message) error
}

// Consumer manages the periodic queue drain
type Consumer struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.ConsumerConfig
	store     Store
	processor Processor
	cache     *dedup.Cache
	metrics   *metricsPkg.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
	// flight guarantees only one drain cycle runs at a time
	flight sync.Mutex
}

// New creates a new queue consumer
func New(cfg *config.ConsumerConfig, store Store, processor Processor, metrics *metricsPkg.Metrics) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		cron:      cron.New(cron.WithSeconds()),
		config:    cfg,
		store:     store,
		processor: processor,
		cache:     dedup.NewCache(cfg.DedupCacheSize),
		metrics:   metrics,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the consumer
func (c *Consumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return fmt.Errorf("consumer is already running")
	}

	schedule := fmt.Sprintf("@every %ds", c.config.IntervalSeconds)

	entryID, err := c.cron.AddFunc(schedule, c.processQueue)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	c.entryID = entryID
	c.cron.Start()
	c.isRunning = true

	logrus.Infof("Queue consumer started with interval: %d seconds", c.config.IntervalSeconds)
	return nil
}

// Stop stops the consumer
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return nil
	}

	c.cancel()

	ctx := c.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Queue consumer stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Queue consumer stop timeout, forcing shutdown")
	}

	c.isRunning = false
	return nil
}

// IsRunning returns whether the consumer is running
func (c *Consumer) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isRunning
}

// RunOnce runs one processing cycle (for manual triggering)
func (c *Consumer) RunOnce() error {
	logrus.Info("Running queue processing once")
	c.processQueue()
	return nil
}

// GetNextRun returns the time of the next scheduled run
func (c *Consumer) GetNextRun() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isRunning {
		return time.Time{}
	}

	entry := c.cron.Entry(c.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last run
func (c *Consumer) GetLastRun() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isRunning {
		return time.Time{}
	}

	entry := c.cron.Entry(c.entryID)
	return entry.Prev
}

// Wait waits for the consumer to stop
func (c *Consumer) Wait() {
	c.wg.Wait()
}
