package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	ItemsProcessed      prometheus.Counter
	JournalEntries      prometheus.Counter
	ConversationReplies prometheus.Counter
	OnboardingSends     prometheus.Counter
	DedupHits           prometheus.Counter
	ProcessFailures     prometheus.Counter
	ProcessingTime      prometheus.Histogram
	PendingItems        prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ItemsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journal_companion_items_processed_total",
			Help: "Total number of queue items processed successfully",
		}),
		JournalEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journal_companion_journal_entries_total",
			Help: "Total number of inbound emails saved as journal entries",
		}),
		ConversationReplies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journal_companion_conversation_replies_total",
			Help: "Total number of conversational replies sent",
		}),
		OnboardingSends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journal_companion_onboarding_sends_total",
			Help: "Total number of onboarding emails sent to unknown senders",
		}),
		DedupHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journal_companion_dedup_hits_total",
			Help: "Total number of queue items short-circuited as duplicates",
		}),
		ProcessFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "journal_companion_process_failures_total",
			Help: "Total number of failed processing attempts",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "journal_companion_processing_duration_seconds",
			Help:    "Time spent processing one queue item",
			Buckets: prometheus.DefBuckets,
		}),
		PendingItems: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "journal_companion_pending_items",
			Help: "Number of queue items currently pending",
		}),
	}
}
