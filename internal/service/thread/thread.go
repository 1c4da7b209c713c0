// Package thread resolves conversation identifiers for inbound messages.
package thread

import (
	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/model"
	"journal-companion-go/internal/repository"
)

// EmailStore looks up prior emails for thread continuity
type EmailStore interface {
	GetEmails(userID uint, filter repository.EmailFilter) ([]model.Email, error)
}

// IDMinter mints fresh conversation identifiers
type IDMinter interface {
	GenerateConversationID() string
}

// Resolver determines the conversation id for a message
type Resolver struct {
	store EmailStore
	ids   IDMinter
}

// New creates a conversation resolver
func New(store EmailStore, ids IDMinter) *Resolver {
	return &Resolver{store: store, ids: ids}
}

// Resolve returns the conversation id for a message. A reply whose
// referenced message is stored reuses that email's conversation id;
// everything else gets a fresh one. Threading is best-effort: lookup
// failures mint a new id rather than failing the message.
func (r *Resolver) Resolve(userID uint, isReply bool, inReplyTo string) string {
	if isReply && inReplyTo != "" {
		previous, err := r.store.GetEmails(userID, repository.EmailFilter{
			MessageID: inReplyTo,
		})
		if err != nil {
			logrus.Warnf("Thread lookup for %q failed, minting new conversation: %v", inReplyTo, err)
		} else if len(previous) > 0 && previous[0].ConversationID != "" {
			return previous[0].ConversationID
		}
	}
	return r.ids.GenerateConversationID()
}
