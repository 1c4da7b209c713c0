// Package memory keeps keyword-indexed facts about each user so that
// conversational replies can reference earlier messages and journal entries.
package memory

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/model"
)

// Store is the persistence surface the memory service needs
type Store interface {
	SaveMemory(memory *model.Memory) error
	FindMemoriesByUser(userID uint) ([]model.Memory, error)
}

// Service records and recalls user memories
type Service struct {
	store Store
}

// New creates a memory service
func New(store Store) *Service {
	return &Service{store: store}
}

const (
	maxRelevant    = 5
	maxKeywords    = 8
	minKeywordLen  = 4
	snippetMaxRune = 280
)

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

// stopwords excluded from keyword extraction
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "because": true,
	"been": true, "before": true, "being": true, "could": true,
	"every": true, "from": true, "have": true, "having": true,
	"just": true, "like": true, "more": true, "most": true,
	"other": true, "over": true, "really": true, "some": true,
	"than": true, "that": true, "their": true, "them": true,
	"then": true, "there": true, "these": true, "they": true,
	"this": true, "today": true, "very": true, "were": true,
	"what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "would": true,
	"your": true,
}

// ProcessMessage extracts the salient keywords of a message and stores a
// memory snippet under them. Failures are logged, not returned: memory
// capture is best-effort and must never fail the enclosing pipeline.
func (s *Service) ProcessMessage(userID uint, text, topic string) {
	keywords := extractKeywords(text)
	if len(keywords) == 0 {
		return
	}

	mem := &model.Memory{
		UserID:         userID,
		Content:        snippet(text),
		Keywords:       strings.Join(keywords, ","),
		Topic:          topic,
		Frequency:      1,
		LastAccessedAt: time.Now(),
	}
	if err := s.store.SaveMemory(mem); err != nil {
		logrus.Warnf("Failed to save memory for user %d: %v", userID, err)
	}
}

// GetRelevantMemories returns up to five stored memories ranked by keyword
// overlap with the given text
func (s *Service) GetRelevantMemories(userID uint, text string) ([]model.Memory, error) {
	memories, err := s.store.FindMemoriesByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}

	wanted := make(map[string]bool)
	for _, kw := range extractKeywords(text) {
		wanted[kw] = true
	}

	type scored struct {
		memory model.Memory
		score  int
	}
	var ranked []scored
	for _, mem := range memories {
		score := 0
		for _, kw := range strings.Split(mem.Keywords, ",") {
			if wanted[kw] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{memory: mem, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > maxRelevant {
		ranked = ranked[:maxRelevant]
	}
	result := make([]model.Memory, 0, len(ranked))
	for _, r := range ranked {
		result = append(result, r.memory)
	}
	return result, nil
}

// FormatMemoriesForPrompt renders memories as a context block for the AI
// prompt; empty input yields an empty string
func (s *Service) FormatMemoriesForPrompt(memories []model.Memory) string {
	if len(memories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Things you remember about this person:\n")
	for _, mem := range memories {
		b.WriteString("- ")
		b.WriteString(mem.Content)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// GenerateConversationID mints a new thread identifier
func (s *Service) GenerateConversationID() string {
	return uuid.NewString()
}

// extractKeywords tokenizes the text and keeps the first distinct non-stopword
// tokens of useful length
func extractKeywords(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]bool)
	var keywords []string
	for _, token := range tokens {
		if len(token) < minKeywordLen || stopwords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// snippet truncates text for storage as memory content
func snippet(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= snippetMaxRune {
		return string(runes)
	}
	return string(runes[:snippetMaxRune]) + "..."
}
