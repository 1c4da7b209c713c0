// Package dedup provides best-effort in-process deduplication of queue
// items. The cache is advisory: it is process-local and not durable, so it
// short-circuits obvious duplicates but guarantees nothing across restarts
// or multiple instances.
package dedup

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a bounded set of recently processed message fingerprints. When
// the bound is exceeded, only the most recent half is retained.
type Cache struct {
	mu    sync.Mutex
	limit int
	seen  map[string]bool
	order []string
}

// NewCache creates a cache holding at most limit fingerprints
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = 1000
	}
	return &Cache{
		limit: limit,
		seen:  make(map[string]bool),
	}
}

// Contains reports whether the fingerprint was recently processed
func (c *Cache) Contains(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[fingerprint]
}

// Add records a processed fingerprint, trimming to the newest half when the
// bound is exceeded
func (c *Cache) Add(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen[fingerprint] {
		return
	}
	c.seen[fingerprint] = true
	c.order = append(c.order, fingerprint)

	if len(c.order) > c.limit {
		keep := c.order[len(c.order)-c.limit/2:]
		c.seen = make(map[string]bool, len(keep))
		for _, fp := range keep {
			c.seen[fp] = true
		}
		c.order = append([]string(nil), keep...)
	}
}

// Len returns the number of cached fingerprints
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Fingerprint derives the deduplication key for a queue payload: a provider
// message identifier when one is present (direct fields or headers, matched
// case-insensitively), else a composite of sender, subject and creation time.
func Fingerprint(payload []byte, createdAt time.Time) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return compositeKey(nil, createdAt)
	}

	for _, key := range []string{"messageId", "MessageId", "message-id", "Message-ID"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}

	if headers := headersObject(fields); headers != nil {
		for key, v := range headers {
			lower := strings.ToLower(key)
			if lower != "message-id" && lower != "messageid" {
				continue
			}
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}

	return compositeKey(fields, createdAt)
}

func compositeKey(fields map[string]interface{}, createdAt time.Time) string {
	from := aliasValue(fields, "from", "sender")
	subject := aliasValue(fields, "subject")
	return fmt.Sprintf("%s:%s:%s", from, subject, createdAt.UTC().Format(time.RFC3339))
}

func aliasValue(fields map[string]interface{}, names ...string) string {
	for key, v := range fields {
		for _, name := range names {
			if strings.EqualFold(key, name) {
				if s, ok := v.(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

func headersObject(fields map[string]interface{}) map[string]interface{} {
	for key, v := range fields {
		if !strings.EqualFold(key, "headers") || v == nil {
			continue
		}
		switch h := v.(type) {
		case map[string]interface{}:
			return h
		case string:
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(h), &parsed); err == nil {
				return parsed
			}
		}
	}
	return nil
}
