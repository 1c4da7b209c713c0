package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"journal-companion-go/internal/model"
)

// EmailFilter narrows GetEmails results
type EmailFilter struct {
	MessageID      string
	ConversationID string
	Direction      string
	Limit          int
}

// JournalFilter narrows GetJournalEntries results
type JournalFilter struct {
	CreatedAfter time.Time
	Limit        int
}

// Repository is the storage collaborator for the processing pipeline
type Repository struct {
	db *gorm.DB
}

// New creates a new repository
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnqueuePayload creates a pending queue item for an inbound payload
func (r *Repository) EnqueuePayload(payload []byte) (*model.QueueItem, error) {
	item := model.QueueItem{
		Payload: payload,
		Status:  model.StatusPending,
	}
	if result := r.db.Create(&item); result.Error != nil {
		return nil, fmt.Errorf("failed to enqueue payload: %w", result.Error)
	}
	return &item, nil
}

// GetNextPendingItem returns the oldest pending queue item, or nil if none
func (r *Repository) GetNextPendingItem() (*model.QueueItem, error) {
	var item model.QueueItem
	result := r.db.Where("status = ?", model.StatusPending).
		Order("created_at ASC").
		First(&item)
	if result.Error == nil {
		return &item, nil
	}
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get next pending item: %w", result.Error)
}

// MarkItemProcessing transitions a queue item to processing
func (r *Repository) MarkItemProcessing(id uint) error {
	return r.updateItemStatus(id, model.StatusProcessing)
}

// MarkItemCompleted transitions a queue item to its terminal success state
func (r *Repository) MarkItemCompleted(id uint) error {
	return r.updateItemStatus(id, model.StatusCompleted)
}

// MarkItemFailed transitions a queue item to its terminal failure state
func (r *Repository) MarkItemFailed(id uint, reason string) error {
	result := r.db.Model(&model.QueueItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.StatusFailed,
			"last_error": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark item %d failed: %w", id, result.Error)
	}
	return nil
}

// IncrementItemAttempts bumps the attempt counter, records the error, and
// returns the item to the pending state so the next poll cycle retries it
func (r *Repository) IncrementItemAttempts(id uint, lastError string) error {
	result := r.db.Model(&model.QueueItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"process_attempts": gorm.Expr("process_attempts + 1"),
			"last_error":       lastError,
			"status":           model.StatusPending,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to increment attempts for item %d: %w", id, result.Error)
	}
	return nil
}

// CountPendingItems returns the number of pending queue items
func (r *Repository) CountPendingItems() (int64, error) {
	var count int64
	result := r.db.Model(&model.QueueItem{}).
		Where("status = ?", model.StatusPending).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count pending items: %w", result.Error)
	}
	return count, nil
}

func (r *Repository) updateItemStatus(id uint, status string) error {
	result := r.db.Model(&model.QueueItem{}).Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to mark item %d %s: %w", id, status, result.Error)
	}
	return nil
}

// GetUserByEmail finds a user by address, or nil if none is registered
func (r *Repository) GetUserByEmail(addr string) (*model.User, error) {
	var user model.User
	result := r.db.Where("LOWER(email) = LOWER(?)", addr).First(&user)
	if result.Error == nil {
		return &user, nil
	}
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to look up user by email: %w", result.Error)
}

// GetAllUsers returns every registered user
func (r *Repository) GetAllUsers() ([]model.User, error) {
	var users []model.User
	if result := r.db.Find(&users); result.Error != nil {
		return nil, fmt.Errorf("failed to get users: %w", result.Error)
	}
	return users, nil
}

// CreateJournalEntry persists a new journal entry
func (r *Repository) CreateJournalEntry(entry *model.JournalEntry) error {
	if result := r.db.Create(entry); result.Error != nil {
		return fmt.Errorf("failed to create journal entry: %w", result.Error)
	}
	return nil
}

// GetJournalEntries returns a user's journal entries, newest first
func (r *Repository) GetJournalEntries(userID uint, filter JournalFilter) ([]model.JournalEntry, error) {
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if !filter.CreatedAfter.IsZero() {
		query = query.Where("created_at > ?", filter.CreatedAfter)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var entries []model.JournalEntry
	if result := query.Find(&entries); result.Error != nil {
		return nil, fmt.Errorf("failed to get journal entries: %w", result.Error)
	}
	return entries, nil
}

// CreateEmail persists an email record
func (r *Repository) CreateEmail(email *model.Email) error {
	if result := r.db.Create(email); result.Error != nil {
		return fmt.Errorf("failed to create email: %w", result.Error)
	}
	return nil
}

// GetEmails returns a user's emails matching the filter, newest first
func (r *Repository) GetEmails(userID uint, filter EmailFilter) ([]model.Email, error) {
	query := r.db.Where("user_id = ?", userID).Order("sent_at DESC")
	if filter.MessageID != "" {
		query = query.Where("message_id = ?", filter.MessageID)
	}
	if filter.ConversationID != "" {
		query = query.Where("conversation_id = ?", filter.ConversationID)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var emails []model.Email
	if result := query.Find(&emails); result.Error != nil {
		return nil, fmt.Errorf("failed to get emails: %w", result.Error)
	}
	return emails, nil
}

// SaveMemory creates or refreshes a memory row. An existing row with the
// same user and keyword set has its frequency bumped instead of duplicating.
func (r *Repository) SaveMemory(memory *model.Memory) error {
	var existing model.Memory
	result := r.db.Where("user_id = ? AND keywords = ?", memory.UserID, memory.Keywords).
		First(&existing)
	if result.Error == nil {
		updates := map[string]interface{}{
			"frequency":        gorm.Expr("frequency + 1"),
			"content":          memory.Content,
			"last_accessed_at": time.Now(),
		}
		if res := r.db.Model(&existing).Updates(updates); res.Error != nil {
			return fmt.Errorf("failed to refresh memory: %w", res.Error)
		}
		return nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to look up memory: %w", result.Error)
	}
	if res := r.db.Create(memory); res.Error != nil {
		return fmt.Errorf("failed to create memory: %w", res.Error)
	}
	return nil
}

// FindMemoriesByUser returns a user's memories, most frequently seen first
func (r *Repository) FindMemoriesByUser(userID uint) ([]model.Memory, error) {
	var memories []model.Memory
	result := r.db.Where("user_id = ?", userID).
		Order("frequency DESC, last_accessed_at DESC").
		Find(&memories)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get memories: %w", result.Error)
	}
	return memories, nil
}
