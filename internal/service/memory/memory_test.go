package memory

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-companion-go/internal/model"
)

type fakeStore struct {
	saved    []*model.Memory
	saveErr  error
	memories []model.Memory
	findErr  error
}

func (s *fakeStore) SaveMemory(memory *model.Memory) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, memory)
	return nil
}

func (s *fakeStore) FindMemoriesByUser(uint) ([]model.Memory, error) {
	return s.memories, s.findErr
}

func TestProcessMessageSavesKeywords(t *testing.T) {
	store := &fakeStore{}
	s := New(store)

	s.ProcessMessage(7, "Started training for the spring marathon with my running club", model.TopicJournal)

	require.Len(t, store.saved, 1)
	mem := store.saved[0]
	assert.Equal(t, uint(7), mem.UserID)
	assert.Equal(t, model.TopicJournal, mem.Topic)
	assert.Contains(t, mem.Keywords, "marathon")
	assert.Contains(t, mem.Keywords, "spring")
	assert.NotContains(t, strings.Split(mem.Keywords, ","), "the")
}

func TestProcessMessageSkipsEmptyKeywords(t *testing.T) {
	store := &fakeStore{}
	s := New(store)

	s.ProcessMessage(7, "a b c", model.TopicJournal)

	assert.Empty(t, store.saved)
}

func TestProcessMessageSwallowsStoreErrors(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("db down")}
	s := New(store)

	// Must not panic or propagate
	s.ProcessMessage(7, "memorable marathon training session", model.TopicJournal)
}

func TestProcessMessageKeywordLimit(t *testing.T) {
	store := &fakeStore{}
	s := New(store)

	s.ProcessMessage(7, "alpha bravo charlie delta echoes foxtrot golfing hotels india juliet kilos", model.TopicConversation)

	require.Len(t, store.saved, 1)
	assert.Len(t, strings.Split(store.saved[0].Keywords, ","), 8)
}

func TestProcessMessageTruncatesLongContent(t *testing.T) {
	store := &fakeStore{}
	s := New(store)

	long := strings.Repeat("marathon training ", 40)
	s.ProcessMessage(7, long, model.TopicJournal)

	require.Len(t, store.saved, 1)
	assert.LessOrEqual(t, len([]rune(store.saved[0].Content)), 283)
	assert.True(t, strings.HasSuffix(store.saved[0].Content, "..."))
}

func TestGetRelevantMemoriesRanksByOverlap(t *testing.T) {
	store := &fakeStore{memories: []model.Memory{
		{ID: 1, Content: "likes painting", Keywords: "painting,watercolor"},
		{ID: 2, Content: "marathon runner", Keywords: "marathon,running,training"},
		{ID: 3, Content: "unrelated", Keywords: "cooking,baking"},
	}}
	s := New(store)

	got, err := s.GetRelevantMemories(7, "more marathon training this week, running felt easy")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestGetRelevantMemoriesCapsAtFive(t *testing.T) {
	var memories []model.Memory
	for i := 0; i < 8; i++ {
		memories = append(memories, model.Memory{ID: uint(i + 1), Keywords: "garden"})
	}
	store := &fakeStore{memories: memories}
	s := New(store)

	got, err := s.GetRelevantMemories(7, "spent the day in the garden")
	require.NoError(t, err)

	assert.Len(t, got, 5)
}

func TestGetRelevantMemoriesStoreError(t *testing.T) {
	store := &fakeStore{findErr: errors.New("db down")}
	s := New(store)

	_, err := s.GetRelevantMemories(7, "anything")
	assert.Error(t, err)
}

func TestFormatMemoriesForPrompt(t *testing.T) {
	s := New(&fakeStore{})

	assert.Equal(t, "", s.FormatMemoriesForPrompt(nil))

	got := s.FormatMemoriesForPrompt([]model.Memory{
		{Content: "they run marathons"},
		{Content: "they have two cats"},
	})
	assert.Contains(t, got, "Things you remember about this person:")
	assert.Contains(t, got, "- they run marathons")
	assert.Contains(t, got, "- they have two cats")
}

func TestGenerateConversationIDUnique(t *testing.T) {
	s := New(&fakeStore{})

	assert.NotEqual(t, s.GenerateConversationID(), s.GenerateConversationID())
}
