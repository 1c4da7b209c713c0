// Package ai talks to an OpenAI-compatible chat-completions API to generate
// companion reply content.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"journal-companion-go/internal/config"
)

var (
	// ErrNotConfigured indicates the AI client has no API key
	ErrNotConfigured = errors.New("AI client not configured")
	// ErrRequestFailed indicates the AI API call failed
	ErrRequestFailed = errors.New("AI request failed")
	// ErrInvalidResponse indicates an unusable response from the AI API
	ErrInvalidResponse = errors.New("invalid AI API response")
)

// Provider represents an AI provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
	ProviderClaude Provider = "claude"
	ProviderCustom Provider = "custom"
)

// ContentType selects the kind of companion content to generate
type ContentType string

const (
	ContentDailyInspiration      ContentType = "daily_inspiration"
	ContentJournalAcknowledgment ContentType = "journal_acknowledgment"
	ContentWeeklyInsight         ContentType = "weekly_insight"
	ContentEmailConversation     ContentType = "email_conversation"
	ContentJournalResponse       ContentType = "journal_response"
	ContentConversationReply     ContentType = "conversation_reply"
)

// systemPrompts describe the companion voice per content type
var systemPrompts = map[ContentType]string{
	ContentDailyInspiration:      "You are a warm, encouraging journaling companion. Write a short daily inspiration inviting the reader to reflect on their day.",
	ContentJournalAcknowledgment: "You are a warm journaling companion. Acknowledge that the reader's journal entry has been saved, referencing its themes gently.",
	ContentWeeklyInsight:         "You are a thoughtful journaling companion. Summarize the week's journal entries into a few kind, reflective insights.",
	ContentEmailConversation:     "You are a friendly journaling companion having an email conversation. Reply warmly and personally to the reader's message.",
	ContentJournalResponse:       "You are a thoughtful journaling companion. Respond to the reader's journal entry with gentle reflections.",
	ContentConversationReply:     "You are a friendly journaling companion. Continue the ongoing conversation naturally.",
}

// Client handles AI API communication
type Client struct {
	provider   Provider
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an AI client from configuration
func NewClient(cfg *config.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		provider: Provider(strings.ToLower(cfg.Provider)),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	if cfg.BaseURL != "" {
		c.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		return c
	}

	switch c.provider {
	case ProviderClaude:
		c.baseURL = "https://api.anthropic.com/v1"
		if c.model == "" {
			c.model = "claude-3-haiku-20240307"
		}
	case ProviderAzure:
		if c.model == "" {
			c.model = "gpt-35-turbo"
		}
	default:
		c.provider = ProviderOpenAI
		c.baseURL = "https://api.openai.com/v1"
		if c.model == "" {
			c.model = "gpt-3.5-turbo"
		}
	}
	return c
}

// IsConfigured returns whether the client has credentials
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// chatMessage represents a message in a chat conversation
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateContent produces companion content of the given type. The greeting
// opens the message; context (journal text, conversation body, memories) is
// supplied to the model verbatim.
func (c *Client) GenerateContent(ctx context.Context, contentType ContentType, greeting, promptContext string) (string, error) {
	system, ok := systemPrompts[contentType]
	if !ok {
		system = systemPrompts[ContentEmailConversation]
	}

	var user strings.Builder
	user.WriteString("Open your message with this greeting: ")
	user.WriteString(greeting)
	if promptContext != "" {
		user.WriteString("\n\nContext:\n")
		user.WriteString(promptContext)
	}

	messages := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user.String()},
	}
	return c.sendChatRequest(ctx, messages)
}

// sendChatRequest sends a chat completion request to the AI API
func (c *Client) sendChatRequest(ctx context.Context, messages []chatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	request := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.7,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	switch c.provider {
	case ProviderClaude:
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrRequestFailed, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrInvalidResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}
