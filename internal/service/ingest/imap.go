// Package ingest polls an IMAP mailbox and enqueues new messages as raw
// MIME payloads for the queue consumer. It is an optional intake path next
// to the inbound webhook.
package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/config"
	"journal-companion-go/internal/model"
)

// Queue is where fetched messages are enqueued
type Queue interface {
	EnqueuePayload(payload []byte) (*model.QueueItem, error)
}

// Poller fetches new mail over IMAP and feeds the queue
type Poller struct {
	cfg       *config.IngestConfig
	queue     Queue
	client    *client.Client
	lastCheck time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPoller connects to the IMAP server and logs in
func NewPoller(cfg *config.IngestConfig, queue Queue) (*Poller, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPass); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		cfg:       cfg,
		queue:     queue,
		client:    c,
		lastCheck: time.Now().Add(-24 * time.Hour),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins polling in the background
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("IMAP poller is already running")
	}
	p.isRunning = true

	interval := time.Duration(p.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				if err := p.pollOnce(); err != nil {
					logrus.Errorf("IMAP poll failed: %v", err)
				}
			}
		}
	}()

	logrus.Infof("IMAP poller started with interval: %v", interval)
	return nil
}

// Stop stops polling and logs out
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return nil
	}

	p.cancel()
	p.wg.Wait()
	p.isRunning = false
	return p.client.Logout()
}

// pollOnce fetches messages received since the last check and enqueues each
// one as a raw MIME payload
func (p *Poller) pollOnce() error {
	if _, err := p.client.Select("INBOX", true); err != nil {
		return fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = p.lastCheck

	uids, err := p.client.Search(criteria)
	if err != nil {
		return fmt.Errorf("failed to search messages: %w", err)
	}
	if len(uids) == 0 {
		p.lastCheck = time.Now()
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)

	go func() {
		done <- p.client.Fetch(seqset, []imap.FetchItem{section.FetchItem(), imap.FetchUid}, messages)
	}()

	enqueued := 0
	for msg := range messages {
		if err := p.enqueueMessage(msg, section); err != nil {
			logrus.Warnf("Failed to enqueue IMAP message: %v", err)
			continue
		}
		enqueued++
	}

	if err := <-done; err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	p.lastCheck = time.Now()
	if enqueued > 0 {
		logrus.Infof("Enqueued %d messages from IMAP", enqueued)
	}
	return nil
}

// enqueueMessage wraps one raw message in the base64 payload shape the
// normalizer recognizes
func (p *Poller) enqueueMessage(msg *imap.Message, section *imap.BodySectionName) error {
	body := msg.GetBody(section)
	if body == nil {
		return fmt.Errorf("message %d has no body", msg.Uid)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read message body: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"rawMimeBase64": base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if _, err := p.queue.EnqueuePayload(payload); err != nil {
		return fmt.Errorf("failed to enqueue payload: %w", err)
	}
	return nil
}
