package thread

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"journal-companion-go/internal/model"
	"journal-companion-go/internal/repository"
)

type fakeEmailStore struct {
	emails []model.Email
	err    error
	filter repository.EmailFilter
}

func (s *fakeEmailStore) GetEmails(_ uint, filter repository.EmailFilter) ([]model.Email, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.emails, nil
}

type fakeMinter struct {
	next string
}

func (m *fakeMinter) GenerateConversationID() string {
	return m.next
}

func TestResolveReplyReusesConversation(t *testing.T) {
	store := &fakeEmailStore{emails: []model.Email{
		{MessageID: "<msg-1@example.com>", ConversationID: "conv-abc"},
	}}
	r := New(store, &fakeMinter{next: "conv-new"})

	got := r.Resolve(7, true, "<msg-1@example.com>")

	assert.Equal(t, "conv-abc", got)
	assert.Equal(t, "<msg-1@example.com>", store.filter.MessageID)
}

func TestResolveReplyWithoutStoredMessage(t *testing.T) {
	store := &fakeEmailStore{}
	r := New(store, &fakeMinter{next: "conv-new"})

	got := r.Resolve(7, true, "<unknown@example.com>")

	assert.Equal(t, "conv-new", got)
}

func TestResolveFreshMessageMintsID(t *testing.T) {
	store := &fakeEmailStore{}
	r := New(store, &fakeMinter{next: "conv-new"})

	got := r.Resolve(7, false, "")

	assert.Equal(t, "conv-new", got)
	// No lookup for a non-reply
	assert.Equal(t, repository.EmailFilter{}, store.filter)
}

func TestResolveLookupErrorMintsID(t *testing.T) {
	store := &fakeEmailStore{err: errors.New("db down")}
	r := New(store, &fakeMinter{next: "conv-new"})

	got := r.Resolve(7, true, "<msg-1@example.com>")

	assert.Equal(t, "conv-new", got)
}

func TestResolveStoredMessageWithoutConversation(t *testing.T) {
	store := &fakeEmailStore{emails: []model.Email{
		{MessageID: "<msg-1@example.com>", ConversationID: ""},
	}}
	r := New(store, &fakeMinter{next: "conv-new"})

	got := r.Resolve(7, true, "<msg-1@example.com>")

	assert.Equal(t, "conv-new", got)
}
