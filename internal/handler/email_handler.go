package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"journal-companion-go/internal/repository"
)

// GetUserEmails returns stored emails for a user, newest first
func (h *Handlers) GetUserEmails(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	filter := repository.EmailFilter{
		ConversationID: c.Query("conversation_id"),
		Direction:      c.Query("direction"),
		Limit:          queryLimit(c, 50),
	}

	emails, err := h.repo.GetEmails(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to load emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"emails": emails,
		"count":  len(emails),
	})
}

// GetUserJournal returns a user's journal entries, newest first
func (h *Handlers) GetUserJournal(c *gin.Context) {
	userID, ok := h.pathUserID(c)
	if !ok {
		return
	}

	filter := repository.JournalFilter{
		Limit: queryLimit(c, 50),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid since timestamp, expected RFC3339",
				Code:    http.StatusBadRequest,
			})
			return
		}
		filter.CreatedAfter = t
	}

	entries, err := h.repo.GetJournalEntries(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to load journal entries",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// pathUserID parses the :id path parameter
func (h *Handlers) pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid user id",
			Code:    http.StatusBadRequest,
		})
		return 0, false
	}
	return uint(id), true
}

// queryLimit parses the limit query parameter with a default
func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
