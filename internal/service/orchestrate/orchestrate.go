// Package orchestrate drives the persistence and reply side effects for a
// normalized inbound message: journal entries for journaling content,
// threaded conversations for everything else, and an onboarding note for
// senders without an account.
package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/config"
	metricsPkg "journal-companion-go/internal/metrics"
	"journal-companion-go/internal/model"
	"journal-companion-go/internal/service/ai"
	"journal-companion-go/internal/service/classify"
	"journal-companion-go/internal/service/normalize"
	"journal-companion-go/internal/service/sanitize"
)

// Store is the persistence surface the orchestrator needs
type Store interface {
	GetUserByEmail(addr string) (*model.User, error)
	CreateJournalEntry(entry *model.JournalEntry) error
	CreateEmail(email *model.Email) error
}

// Generator produces companion reply content
type Generator interface {
	GenerateContent(ctx context.Context, contentType ai.ContentType, greeting, promptContext string) (string, error)
}

// MemoryService records and recalls user context
type MemoryService interface {
	ProcessMessage(userID uint, text, topic string)
	GetRelevantMemories(userID uint, text string) ([]model.Memory, error)
	FormatMemoriesForPrompt(memories []model.Memory) string
}

// ThreadResolver determines conversation ids
type ThreadResolver interface {
	Resolve(userID uint, isReply bool, inReplyTo string) string
}

// EmailSender delivers outbound email
type EmailSender interface {
	Send(ctx context.Context, to, subject, content string, isPremium bool) (string, error)
}

// subjects per companion content type
var subjects = map[ai.ContentType]string{
	ai.ContentDailyInspiration:      "Today's Inspiration",
	ai.ContentJournalAcknowledgment: "Your Journal Entry Has Been Received",
	ai.ContentWeeklyInsight:         "Your Weekly Reflection Insights",
	ai.ContentEmailConversation:     "Your Companion's Response",
	ai.ContentJournalResponse:       "Thoughts on Your Journal",
	ai.ContentConversationReply:     "Your Companion's Reply",
}

const onboardingSubject = "Welcome - Your Personal Journaling Companion"

const onboardingMessage = `Hello!

It looks like you've discovered your personal journaling companion.
I can help you maintain a journal through email.

To get started, simply reply to this email with your thoughts, feelings, or
experiences, and I'll help you save them as journal entries. You can also ask
me questions or just chat!

Looking forward to our conversations`

// Orchestrator executes the journal or conversation branch for a message
type Orchestrator struct {
	store     Store
	generator Generator
	memories  MemoryService
	threads   ThreadResolver
	sender    EmailSender
	metrics   *metricsPkg.Metrics
	cfg       *config.DeliveryConfig
}

// New creates an orchestrator
func New(store Store, generator Generator, memories MemoryService, threads ThreadResolver, sender EmailSender, metrics *metricsPkg.Metrics, cfg *config.DeliveryConfig) *Orchestrator {
	return &Orchestrator{
		store:     store,
		generator: generator,
		memories:  memories,
		threads:   threads,
		sender:    sender,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// ProcessIncoming handles one normalized inbound message. Errors propagate
// to the queue consumer and drive its retry counter; the onboarding branch
// is the exception, where a failed courtesy send still completes the item.
func (o *Orchestrator) ProcessIncoming(ctx context.Context, msg *normalize.Message) error {
	clean := sanitize.Clean(msg.Body)
	isReply := classify.IsReply(msg.Subject, msg.InReplyTo)

	logrus.Infof("Processing inbound email from %s (reply=%t, %d chars)",
		msg.Sender, isReply, len(clean))

	user, err := o.store.GetUserByEmail(msg.Sender)
	if err != nil {
		return fmt.Errorf("failed to resolve sender %s: %w", msg.Sender, err)
	}

	if user == nil {
		// The inbound message was interpreted successfully even if the
		// courtesy reply fails, so the item still completes
		logrus.Infof("No user registered for %s, sending onboarding email", msg.Sender)
		if _, err := o.sender.Send(ctx, msg.Sender, onboardingSubject, o.signed(onboardingMessage), false); err != nil {
			logrus.Errorf("Failed to send onboarding email to %s: %v", msg.Sender, err)
		} else {
			o.metrics.OnboardingSends.Inc()
		}
		return nil
	}

	if classify.IsJournalEntry(clean, isReply) {
		return o.processJournal(ctx, user, msg, clean)
	}
	return o.processConversation(ctx, user, msg, clean, isReply)
}

// processJournal persists a journal entry, records the inbound email linked
// to it, and sends an acknowledgment reply
func (o *Orchestrator) processJournal(ctx context.Context, user *model.User, msg *normalize.Message, clean string) error {
	mood := classify.DetectMood(clean)
	tags := classify.ExtractTags(clean)

	title := msg.Subject
	if title == "" || title == normalize.DefaultSubject {
		title = "Journal Entry"
	}

	entry := &model.JournalEntry{
		UserID:  user.ID,
		Title:   title,
		Content: clean,
		Mood:    mood,
		Tags:    tags,
	}
	if err := o.store.CreateJournalEntry(entry); err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	logrus.Infof("Journal entry %d created for user %d (mood=%s)", entry.ID, user.ID, mood)

	o.memories.ProcessMessage(user.ID, clean, model.TopicJournal)

	if _, err := o.sendCompanionEmail(ctx, user, ai.ContentJournalAcknowledgment, clean); err != nil {
		return err
	}

	inbound := &model.Email{
		UserID:         &user.ID,
		To:             o.cfg.ReplyToEmail,
		From:           user.Email,
		Subject:        msg.Subject,
		Content:        clean,
		Direction:      model.DirectionInbound,
		MessageID:      inboundMessageID(msg.InReplyTo),
		Mood:           mood,
		Tags:           tags,
		IsJournalEntry: true,
		JournalEntryID: &entry.ID,
		SentAt:         time.Now(),
		IsRead:         true,
	}
	if err := o.store.CreateEmail(inbound); err != nil {
		return fmt.Errorf("failed to record inbound email: %w", err)
	}

	o.metrics.JournalEntries.Inc()
	return nil
}

// processConversation threads the message into a conversation, recalls
// relevant memories, and sends a conversational reply
func (o *Orchestrator) processConversation(ctx context.Context, user *model.User, msg *normalize.Message, clean string, isReply bool) error {
	conversationID := o.threads.Resolve(user.ID, isReply, msg.InReplyTo)
	logrus.Infof("Using conversation id %s for user %d", conversationID, user.ID)

	inbound := &model.Email{
		UserID:         &user.ID,
		To:             o.cfg.ReplyToEmail,
		From:           user.Email,
		Subject:        msg.Subject,
		Content:        clean,
		Direction:      model.DirectionInbound,
		MessageID:      inboundMessageID(msg.InReplyTo),
		ConversationID: conversationID,
		Mood:           classify.DetectMood(clean),
		Tags:           classify.ExtractTags(clean),
		SentAt:         time.Now(),
		IsRead:         true,
	}
	if err := o.store.CreateEmail(inbound); err != nil {
		return fmt.Errorf("failed to record inbound email: %w", err)
	}

	o.memories.ProcessMessage(user.ID, clean, model.TopicConversation)

	relevant, err := o.memories.GetRelevantMemories(user.ID, clean)
	if err != nil {
		return fmt.Errorf("failed to recall memories: %w", err)
	}
	memoryContext := o.memories.FormatMemoriesForPrompt(relevant)

	promptContext := clean
	if memoryContext != "" {
		promptContext = clean + "\n\n" + memoryContext
	}
	if _, err := o.sendCompanionEmail(ctx, user, ai.ContentEmailConversation, promptContext); err != nil {
		return err
	}

	o.metrics.ConversationReplies.Inc()
	return nil
}

// SendCompanionEmail generates companion content of the given type, sends it
// to the user and persists the outbound record. Exposed for broadcast sends.
func (o *Orchestrator) SendCompanionEmail(ctx context.Context, user *model.User, contentType ai.ContentType, promptContext string) (*model.Email, error) {
	return o.sendCompanionEmail(ctx, user, contentType, promptContext)
}

func (o *Orchestrator) sendCompanionEmail(ctx context.Context, user *model.User, contentType ai.ContentType, promptContext string) (*model.Email, error) {
	subject, ok := subjects[contentType]
	if !ok {
		subject = "A Message from Your Companion"
	}

	username := user.Username
	if username == "" {
		username = "Friend"
	}
	greeting := fmt.Sprintf("Hello %s!", username)

	content, err := o.generator.GenerateContent(ctx, contentType, greeting, promptContext)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s content: %w", contentType, err)
	}
	full := o.signed(content)

	messageID, err := o.sender.Send(ctx, user.Email, subject, full, user.IsPremium)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s email: %w", contentType, err)
	}

	outbound := &model.Email{
		UserID:    &user.ID,
		To:        user.Email,
		From:      o.cfg.FromEmail,
		Subject:   subject,
		Content:   full,
		Direction: model.DirectionOutbound,
		MessageID: messageID,
		Mood:      classify.DetectMood(content),
		Tags:      classify.ExtractTags(content),
		SentAt:    time.Now(),
	}
	if err := o.store.CreateEmail(outbound); err != nil {
		return nil, fmt.Errorf("failed to record outbound email: %w", err)
	}
	return outbound, nil
}

// signed appends the companion signature
func (o *Orchestrator) signed(content string) string {
	return fmt.Sprintf("%s\n\nFeathery thoughts,\n%s", content, o.cfg.CompanionName)
}

// inboundMessageID keeps the threading key of a reply, or mints a local one
func inboundMessageID(inReplyTo string) string {
	if inReplyTo != "" {
		return inReplyTo
	}
	return fmt.Sprintf("incoming-%d", time.Now().UnixMilli())
}
