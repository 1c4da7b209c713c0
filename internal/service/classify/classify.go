// Package classify holds the content heuristics: mood detection, tag
// extraction and the journal-vs-conversation decision. All rules live in
// data tables so they stay independently testable.
package classify

import (
	"regexp"
	"strings"

	"journal-companion-go/internal/model"
)

// moodRule maps a mood label to its keyword list. Order is significant only
// for determinism; a mood wins on a strictly higher whole-word match count,
// so any tie (including all-zero) resolves to neutral.
type moodRule struct {
	mood     string
	keywords []string
}

var moodRules = []moodRule{
	{model.MoodHappy, []string{
		"happy", "joy", "excited", "amazing", "wonderful", "great", "good",
		"love", "delighted",
	}},
	{model.MoodCalm, []string{
		"calm", "peaceful", "relaxed", "tranquil", "serene", "content",
		"comfortable", "soothing",
	}},
	{model.MoodSad, []string{
		"sad", "unhappy", "miserable", "depressed", "upset", "blue", "down",
		"disappointed", "sorrow",
	}},
	{model.MoodFrustrated, []string{
		"frustrated", "angry", "annoyed", "irritated", "mad", "furious",
		"rage", "upset", "stress", "worried", "anxiety",
	}},
}

// tagVocabulary is the fixed membership set for tag extraction
var tagVocabulary = map[string]bool{
	"work": true, "family": true, "health": true, "fitness": true,
	"travel": true, "food": true, "learning": true, "hobby": true,
	"meditation": true, "gratitude": true, "challenge": true,
	"reflection": true, "goal": true, "achievement": true,
	"relationship": true, "nature": true, "reading": true, "writing": true,
	"art": true, "music": true, "technology": true, "personal": true,
	"growth": true, "adventure": true, "creativity": true,
	"inspiration": true, "leadership": true, "mindfulness": true,
	"productivity": true, "rest": true,
}

// journalIndicators are first-person journaling phrases; any occurrence in
// a non-reply body marks it as a journal entry
var journalIndicators = []string{
	"today i", "dear diary", "journal entry", "reflecting on",
	"my day", "my thoughts", "i'm feeling", "i am feeling",
	"i feel", "happened today", "grateful for", "i learned",
	"my experience", "i realized", "i've been", "i have been",
	"looking back",
}

const (
	minJournalLength  = 50
	longJournalLength = 300
	maxTags           = 5
	minTagLength      = 4
)

var (
	wordPatterns   = buildWordPatterns()
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]`)
	paragraphSplit = regexp.MustCompile(`\r?\n\r?\n`)
)

func buildWordPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, rule := range moodRules {
		for _, kw := range rule.keywords {
			if _, ok := patterns[kw]; !ok {
				patterns[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
			}
		}
	}
	return patterns
}

// DetectMood returns the dominant mood of the content, or neutral when no
// mood wins by a strict majority of keyword matches
func DetectMood(content string) string {
	dominant := model.MoodNeutral
	maxCount := 0
	tied := false

	for _, rule := range moodRules {
		count := 0
		for _, kw := range rule.keywords {
			count += len(wordPatterns[kw].FindAllString(content, -1))
		}
		if count > maxCount {
			maxCount = count
			dominant = rule.mood
			tied = false
		} else if count == maxCount && count > 0 {
			tied = true
		}
	}

	if maxCount == 0 || tied {
		return model.MoodNeutral
	}
	return dominant
}

// ExtractTags returns up to five vocabulary tags found in the content, in
// first-seen order, deduplicated
func ExtractTags(content string) []string {
	words := strings.Fields(strings.ToLower(content))

	seen := make(map[string]bool)
	var tags []string
	for _, word := range words {
		clean := nonAlnum.ReplaceAllString(word, "")
		if len(clean) < minTagLength || !tagVocabulary[clean] || seen[clean] {
			continue
		}
		seen[clean] = true
		tags = append(tags, clean)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// IsJournalEntry decides whether a sanitized body should be saved as a
// journal entry. Replies are always conversation turns; short bodies never
// qualify; otherwise journaling phrases or substantial multi-paragraph
// content tip the decision.
func IsJournalEntry(content string, isReply bool) bool {
	if isReply {
		return false
	}
	if len(content) < minJournalLength {
		return false
	}

	lower := strings.ToLower(content)
	for _, indicator := range journalIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	if len(content) > longJournalLength && len(paragraphSplit.Split(content, -1)) > 1 {
		return true
	}
	return false
}

// IsReply reports whether a message is a conversational reply, either by an
// explicit threading reference or a "Re:" subject prefix
func IsReply(subject, inReplyTo string) bool {
	return inReplyTo != "" || strings.HasPrefix(strings.ToLower(subject), "re:")
}
