package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-companion-go/internal/config"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(&config.AIConfig{Provider: "openai", APIKey: "k"})
	assert.Equal(t, ProviderOpenAI, c.provider)
	assert.Equal(t, "gpt-3.5-turbo", c.model)
	assert.Equal(t, "https://api.openai.com/v1", c.baseURL)

	c = NewClient(&config.AIConfig{Provider: "claude", APIKey: "k"})
	assert.Equal(t, ProviderClaude, c.provider)
	assert.Equal(t, "claude-3-haiku-20240307", c.model)

	c = NewClient(&config.AIConfig{Provider: "unknown", APIKey: "k"})
	assert.Equal(t, ProviderOpenAI, c.provider)
}

func TestNewClientCustomBaseURL(t *testing.T) {
	c := NewClient(&config.AIConfig{
		Provider: "custom",
		APIKey:   "k",
		Model:    "local-model",
		BaseURL:  "http://localhost:8000/v1/",
	})

	assert.Equal(t, "http://localhost:8000/v1", c.baseURL)
	assert.Equal(t, "local-model", c.model)
}

func TestGenerateContentNotConfigured(t *testing.T) {
	c := NewClient(&config.AIConfig{Provider: "openai"})

	_, err := c.GenerateContent(context.Background(), ContentDailyInspiration, "Hello!", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateContent(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "resp-1",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Warm reply"}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(&config.AIConfig{
		Provider: "openai",
		APIKey:   "secret",
		Model:    "gpt-4o-mini",
		BaseURL:  server.URL,
	})

	got, err := c.GenerateContent(context.Background(), ContentJournalAcknowledgment, "Hello alice!", "journal text")
	require.NoError(t, err)

	assert.Equal(t, "Warm reply", got)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "Hello alice!")
	assert.Contains(t, gotReq.Messages[1].Content, "journal text")
}

func TestGenerateContentClaudeHeaders(t *testing.T) {
	var gotAPIKey, gotVersion string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(&config.AIConfig{
		Provider: "claude",
		APIKey:   "secret",
		BaseURL:  server.URL,
	})

	_, err := c.GenerateContent(context.Background(), ContentEmailConversation, "Hi!", "")
	require.NoError(t, err)

	assert.Equal(t, "secret", gotAPIKey)
	assert.Equal(t, "2023-06-01", gotVersion)
}

func TestGenerateContentErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(&config.AIConfig{Provider: "openai", APIKey: "k", BaseURL: server.URL})

	_, err := c.GenerateContent(context.Background(), ContentEmailConversation, "Hi!", "")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestGenerateContentEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	c := NewClient(&config.AIConfig{Provider: "openai", APIKey: "k", BaseURL: server.URL})

	_, err := c.GenerateContent(context.Background(), ContentEmailConversation, "Hi!", "")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGenerateContentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "model overloaded"},
		})
	}))
	defer server.Close()

	c := NewClient(&config.AIConfig{Provider: "openai", APIKey: "k", BaseURL: server.URL})

	_, err := c.GenerateContent(context.Background(), ContentEmailConversation, "Hi!", "")
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "model overloaded")
}
