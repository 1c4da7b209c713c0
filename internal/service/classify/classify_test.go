package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"journal-companion-go/internal/model"
)

func TestDetectMoodDominant(t *testing.T) {
	content := "I was so happy today, full of joy. It was amazing, even if a bit sad at the end."

	assert.Equal(t, model.MoodHappy, DetectMood(content))
}

func TestDetectMoodTieIsNeutral(t *testing.T) {
	content := "I felt happy but also sad."

	assert.Equal(t, model.MoodNeutral, DetectMood(content))
}

func TestDetectMoodNoKeywords(t *testing.T) {
	assert.Equal(t, model.MoodNeutral, DetectMood("the meeting covered quarterly numbers"))
	assert.Equal(t, model.MoodNeutral, DetectMood(""))
}

func TestDetectMoodWholeWordsOnly(t *testing.T) {
	// "madrid" must not count as "mad"
	assert.Equal(t, model.MoodNeutral, DetectMood("we flew to madrid and unhappiness was discussed"))
}

func TestDetectMoodCaseInsensitive(t *testing.T) {
	assert.Equal(t, model.MoodFrustrated, DetectMood("SO FRUSTRATED and ANGRY right now"))
}

func TestExtractTags(t *testing.T) {
	content := "Work was busy but I squeezed in some fitness and meditation before seeing family."

	tags := ExtractTags(content)

	assert.Equal(t, []string{"work", "fitness", "meditation", "family"}, tags)
}

func TestExtractTagsLimit(t *testing.T) {
	content := "work family health fitness travel food learning"

	tags := ExtractTags(content)

	assert.Len(t, tags, 5)
	assert.Equal(t, []string{"work", "family", "health", "fitness", "travel"}, tags)
}

func TestExtractTagsDeduplicates(t *testing.T) {
	tags := ExtractTags("travel, travel and more travel!")

	assert.Equal(t, []string{"travel"}, tags)
}

func TestExtractTagsNoneFound(t *testing.T) {
	assert.Empty(t, ExtractTags("nothing from the vocabulary appears in here"))
}

func TestIsJournalEntryIndicator(t *testing.T) {
	content := "Today I walked along the river and thought about the past year for a while."

	assert.True(t, IsJournalEntry(content, false))
}

func TestIsJournalEntryTooShort(t *testing.T) {
	assert.False(t, IsJournalEntry("Today I slept.", false))
}

func TestIsJournalEntryReplyNeverJournals(t *testing.T) {
	content := "Today I walked along the river and thought about the past year for a while."

	assert.False(t, IsJournalEntry(content, true))
}

func TestIsJournalEntryLongMultiParagraph(t *testing.T) {
	paragraph := strings.Repeat("A detailed account of the afternoon. ", 6)
	content := paragraph + "\n\n" + paragraph

	assert.True(t, IsJournalEntry(content, false))
}

func TestIsJournalEntryLongSingleParagraph(t *testing.T) {
	content := strings.Repeat("A question about how the service works. ", 10)

	assert.False(t, IsJournalEntry(content, false))
}

func TestIsReply(t *testing.T) {
	assert.True(t, IsReply("Re: our chat", ""))
	assert.True(t, IsReply("RE: OUR CHAT", ""))
	assert.True(t, IsReply("anything", "<msg-1@example.com>"))
	assert.False(t, IsReply("Fresh topic", ""))
}
