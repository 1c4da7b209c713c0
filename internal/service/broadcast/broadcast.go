// Package broadcast sends scheduled companion emails: a daily inspiration
// and a weekly reflection digest built from each user's journal entries.
package broadcast

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"journal-companion-go/internal/config"
	"journal-companion-go/internal/model"
	"journal-companion-go/internal/repository"
	"journal-companion-go/internal/service/ai"
)

// UserStore reads users and their journal entries
type UserStore interface {
	GetAllUsers() ([]model.User, error)
	GetJournalEntries(userID uint, filter repository.JournalFilter) ([]model.JournalEntry, error)
}

// Composer generates and delivers a companion email to one user
type Composer interface {
	SendCompanionEmail(ctx context.Context, user *model.User, contentType ai.ContentType, promptContext string) (*model.Email, error)
}

// Broadcaster runs the scheduled sends
type Broadcaster struct {
	cron      *cron.Cron
	cfg       *config.BroadcastConfig
	store     UserStore
	composer  Composer
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	isRunning bool
}

// New creates a broadcaster
func New(cfg *config.BroadcastConfig, store UserStore, composer Composer) *Broadcaster {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broadcaster{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		store:    store,
		composer: composer,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the daily and weekly jobs and starts the cron
func (b *Broadcaster) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isRunning {
		return fmt.Errorf("broadcaster is already running")
	}

	if _, err := b.cron.AddFunc(b.cfg.DailySchedule, func() {
		if err := b.SendDailyInspiration(b.ctx); err != nil {
			logrus.Errorf("Daily inspiration broadcast failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily broadcast: %w", err)
	}

	if _, err := b.cron.AddFunc(b.cfg.WeeklySchedule, func() {
		if err := b.SendWeeklyInsights(b.ctx); err != nil {
			logrus.Errorf("Weekly insight broadcast failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule weekly broadcast: %w", err)
	}

	b.cron.Start()
	b.isRunning = true

	logrus.Infof("Broadcaster started (daily %q, weekly %q)",
		b.cfg.DailySchedule, b.cfg.WeeklySchedule)
	return nil
}

// Stop stops the broadcaster
func (b *Broadcaster) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isRunning {
		return nil
	}

	b.cancel()
	<-b.cron.Stop().Done()
	b.isRunning = false
	return nil
}

// SendDailyInspiration sends a daily inspiration to every user who wants
// email. Per-user failures are logged so one bad address never stops the run.
func (b *Broadcaster) SendDailyInspiration(ctx context.Context) error {
	users, err := b.store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	sent := 0
	for i := range users {
		user := &users[i]
		if !user.WantsEmail() {
			continue
		}
		if _, err := b.composer.SendCompanionEmail(ctx, user, ai.ContentDailyInspiration, ""); err != nil {
			logrus.Errorf("Failed to send daily inspiration to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}

	logrus.Infof("Daily inspiration sent to %d users", sent)
	return nil
}

// SendWeeklyInsights summarizes the past week's journal entries for each
// user who wrote any; users without entries are skipped
func (b *Broadcaster) SendWeeklyInsights(ctx context.Context) error {
	users, err := b.store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	sent := 0
	for i := range users {
		user := &users[i]
		if !user.WantsEmail() {
			continue
		}

		entries, err := b.store.GetJournalEntries(user.ID, repository.JournalFilter{
			CreatedAfter: weekAgo,
		})
		if err != nil {
			logrus.Errorf("Failed to load journal entries for user %d: %v", user.ID, err)
			continue
		}
		if len(entries) == 0 {
			continue
		}

		promptContext := formatWeek(entries)
		if _, err := b.composer.SendCompanionEmail(ctx, user, ai.ContentWeeklyInsight, promptContext); err != nil {
			logrus.Errorf("Failed to send weekly insight to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}

	logrus.Infof("Weekly insights sent to %d users", sent)
	return nil
}

// formatWeek renders the week's entries as prompt context
func formatWeek(entries []model.JournalEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Journal entries from the past week (%d total):\n", len(entries)))
	for _, entry := range entries {
		b.WriteString(fmt.Sprintf("\n[%s] %s (mood: %s)\n",
			entry.CreatedAt.Format("Mon Jan 2"), entry.Title, entry.Mood))
		b.WriteString(entrySnippet(entry.Content))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// entrySnippet keeps prompts bounded for users who write long entries
func entrySnippet(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= 400 {
		return string(runes)
	}
	return string(runes[:400]) + "..."
}
