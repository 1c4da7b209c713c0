// Package delivery sends outbound companion emails through the Gmail API.
package delivery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"journal-companion-go/internal/config"
)

// ErrDelivery indicates an outbound send failure
var ErrDelivery = errors.New("email delivery failed")

// Sender delivers outbound email
type Sender struct {
	service *gmail.Service
	cfg     *config.DeliveryConfig
}

// NewSender creates a Gmail-backed sender using the refresh-token flow
func NewSender(cfg *config.DeliveryConfig) (*Sender, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}
	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Sender{service: service, cfg: cfg}, nil
}

// Send delivers one email and returns the message id used for threading.
// Non-premium recipients get an upgrade footer appended.
func (s *Sender) Send(ctx context.Context, to, subject, content string, isPremium bool) (string, error) {
	if err := validateRecipient(to); err != nil {
		return "", err
	}

	messageID := s.generateMessageID()
	raw := s.buildMessage(to, subject, content, messageID, isPremium)
	encoded := base64.URLEncoding.EncodeToString([]byte(raw))
	message := &gmail.Message{Raw: encoded}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := s.service.Users.Messages.Send(s.cfg.UserEmail, message).Context(ctx).Do()
		if err == nil {
			logrus.Infof("Sent email to %s with message id %s", to, messageID)
			return messageID, nil
		}

		lastErr = err
		logrus.Warnf("Failed to send email (attempt %d/%d): %v", attempt, 3, err)

		if strings.Contains(err.Error(), "quota") || strings.Contains(err.Error(), "rate") {
			waitTime := time.Duration(attempt*attempt) * time.Second
			logrus.Infof("Rate limited, waiting %v before retry", waitTime)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrDelivery, ctx.Err())
			}
		} else {
			break
		}
	}

	return "", fmt.Errorf("%w: %v", ErrDelivery, lastErr)
}

// Close closes the sender (no-op for the Gmail API)
func (s *Sender) Close() error {
	return nil
}

// validateRecipient rejects obviously malformed recipient addresses
func validateRecipient(to string) error {
	if to == "" || !strings.Contains(to, "@") || strings.HasPrefix(to, "mime-version:") {
		return fmt.Errorf("%w: invalid recipient address: %q", ErrDelivery, to)
	}
	return nil
}

// generateMessageID mints a unique message id under the sending domain for
// reply threading
func (s *Sender) generateMessageID() string {
	domain := "localhost"
	if idx := strings.LastIndex(s.cfg.FromEmail, "@"); idx != -1 {
		domain = s.cfg.FromEmail[idx+1:]
	}
	return fmt.Sprintf("companion-%d-%s@%s",
		time.Now().UnixMilli(), uuid.NewString()[:8], domain)
}

// buildMessage assembles a multipart/alternative RFC 5322 message with both
// plain-text and HTML bodies
func (s *Sender) buildMessage(to, subject, content, messageID string, isPremium bool) string {
	textContent := content
	if !isPremium {
		textContent += "\n\n[Advertisement: Upgrade to premium for ad-free experiences]"
	}
	htmlContent := formatHTML(content, isPremium)

	boundary := "journal-" + uuid.NewString()[:12]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Reply-To: %s\r\n", s.cfg.ReplyToEmail))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString(fmt.Sprintf("Message-ID: <%s>\r\n", messageID))
	b.WriteString(fmt.Sprintf("X-Entity-Ref-ID: %s\r\n", messageID))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(textContent)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlContent)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return b.String()
}

// formatHTML renders the companion content as a simple branded HTML body
func formatHTML(content string, isPremium bool) string {
	htmlBody := strings.ReplaceAll(content, "\n", "<br>")

	adBanner := ""
	if !isPremium {
		adBanner = `<div style="background-color:#f0f7ff;border:1px solid #d0e3ff;border-radius:6px;padding:10px;margin-top:25px;text-align:center;font-size:14px;color:#4a6a96;">Upgrade to premium for an ad-free experience.</div>`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,sans-serif;background-color:#f7f9fc;color:#333;padding:20px;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;border-radius:12px;padding:30px;">
<div style="line-height:1.6;font-size:16px;">%s</div>
%s
<div style="margin-top:30px;padding-top:20px;border-top:1px solid #eaeaea;text-align:center;font-size:12px;color:#666;">
&copy; %d Your Journaling Companion<br>
Simply reply to this email to continue the conversation
</div>
</div>
</body>
</html>`, htmlBody, adBanner, time.Now().Year())
}
