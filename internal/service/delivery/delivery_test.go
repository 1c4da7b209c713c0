package delivery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-companion-go/internal/config"
)

func testSender() *Sender {
	return &Sender{cfg: &config.DeliveryConfig{
		FromEmail:    "companion@featherweight.app",
		FromName:     "Flappy from Featherweight",
		ReplyToEmail: "journal@featherweight.app",
	}}
}

func TestValidateRecipient(t *testing.T) {
	assert.NoError(t, validateRecipient("alice@example.com"))
	assert.ErrorIs(t, validateRecipient(""), ErrDelivery)
	assert.ErrorIs(t, validateRecipient("no-at-sign"), ErrDelivery)
	assert.ErrorIs(t, validateRecipient("mime-version: 1.0"), ErrDelivery)
}

func TestGenerateMessageIDUsesFromDomain(t *testing.T) {
	s := testSender()

	id := s.generateMessageID()

	assert.True(t, strings.HasPrefix(id, "companion-"))
	assert.True(t, strings.HasSuffix(id, "@featherweight.app"))
	assert.NotEqual(t, id, s.generateMessageID())
}

func TestBuildMessageHeaders(t *testing.T) {
	s := testSender()

	raw := s.buildMessage("alice@example.com", "Hello", "body text", "mid-1@featherweight.app", true)

	assert.Contains(t, raw, "From: Flappy from Featherweight <companion@featherweight.app>\r\n")
	assert.Contains(t, raw, "To: alice@example.com\r\n")
	assert.Contains(t, raw, "Reply-To: journal@featherweight.app\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "Message-ID: <mid-1@featherweight.app>\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "body text")
}

func TestBuildMessageAdFooterForFreeUsers(t *testing.T) {
	s := testSender()

	free := s.buildMessage("a@example.com", "Hi", "content", "mid", false)
	premium := s.buildMessage("a@example.com", "Hi", "content", "mid", true)

	assert.Contains(t, free, "Upgrade to premium")
	assert.NotContains(t, premium, "Upgrade to premium")
}

func TestFormatHTMLEscapesNothingButConvertsNewlines(t *testing.T) {
	html := formatHTML("line one\nline two", true)

	require.Contains(t, html, "line one<br>line two")
	assert.Contains(t, html, "Simply reply to this email")
}
