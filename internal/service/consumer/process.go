package consumer

import (
	"time"

	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/model"
	"journal-companion-go/internal/service/dedup"
	"journal-companion-go/internal/service/normalize"
)

// Retries are driven by the polling interval itself: a failed item goes back
// to pending and is picked up again on a later cycle, so the exponential
// delay below is reported for observability rather than enforced.
const maxBackoff = 24 * time.Hour

// processQueue handles at most one queue item per cycle. It is the cron
// callback; overlapping cycles are skipped rather than queued.
func (c *Consumer) processQueue() {
	c.wg.Add(1)
	defer c.wg.Done()

	if !c.flight.TryLock() {
		logrus.Debug("Previous processing cycle still in flight, skipping")
		return
	}
	defer c.flight.Unlock()

	if pending, err := c.store.CountPendingItems(); err == nil {
		c.metrics.PendingItems.Set(float64(pending))
	}

	item, err := c.store.GetNextPendingItem()
	if err != nil {
		logrus.Errorf("Failed to fetch next queue item: %v", err)
		return
	}
	if item == nil {
		return
	}

	startTime := time.Now()
	if err := c.processItem(item); err != nil {
		c.handleFailure(item, err)
		return
	}
	c.metrics.ProcessingTime.Observe(time.Since(startTime).Seconds())
}

// processItem runs one item through dedup, normalization and the processor
func (c *Consumer) processItem(item *model.QueueItem) error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}

	fingerprint := dedup.Fingerprint(item.Payload, item.CreatedAt)
	if c.cache.Contains(fingerprint) {
		logrus.Infof("Skipping duplicate queue item %d (%s)", item.ID, fingerprint)
		c.metrics.DedupHits.Inc()
		return c.store.MarkItemCompleted(item.ID)
	}

	if err := c.store.MarkItemProcessing(item.ID); err != nil {
		return err
	}

	msg, err := normalize.Normalize(item.Payload)
	if err != nil {
		return err
	}

	if err := c.processor.ProcessIncoming(c.ctx, msg); err != nil {
		return err
	}

	if err := c.store.MarkItemCompleted(item.ID); err != nil {
		return err
	}

	c.cache.Add(fingerprint)
	c.metrics.ItemsProcessed.Inc()
	logrus.Infof("Completed queue item %d", item.ID)
	return nil
}

// handleFailure records the failed attempt and retires the item once it has
// exhausted its attempts
func (c *Consumer) handleFailure(item *model.QueueItem, cause error) {
	c.metrics.ProcessFailures.Inc()

	attempt := item.ProcessAttempts + 1
	logrus.Errorf("Failed to process queue item %d (attempt %d/%d): %v",
		item.ID, attempt, c.config.MaxAttempts, cause)

	// The counter is bumped on every failed attempt, including the last one,
	// so a retired item's process_attempts equals the configured ceiling.
	if err := c.store.IncrementItemAttempts(item.ID, cause.Error()); err != nil {
		logrus.Errorf("Failed to record attempt for queue item %d: %v", item.ID, err)
		return
	}

	if attempt >= c.config.MaxAttempts {
		if err := c.store.MarkItemFailed(item.ID, cause.Error()); err != nil {
			logrus.Errorf("Failed to mark queue item %d as failed: %v", item.ID, err)
		}
		logrus.Warnf("Queue item %d retired after %d attempts", item.ID, attempt)
		return
	}

	logrus.Infof("Queue item %d will be retried, suggested delay %v",
		item.ID, backoffDelay(c.config.BackoffBase, item.ProcessAttempts))
}

// backoffDelay doubles the base delay per prior attempt, capped at a day
func backoffDelay(base time.Duration, attempts int) time.Duration {
	if base <= 0 {
		base = time.Minute
	}
	delay := base
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
