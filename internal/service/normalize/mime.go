package normalize

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ParseMIME parses a raw RFC 5322 message into a canonical Message. The
// first text/plain part wins; text/html is kept as a fallback body.
func ParseMIME(raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	sender := mimeSender(&mr.Header)
	if sender == "" {
		sender = UnknownSender
	}

	subject, err := mr.Header.Subject()
	if err != nil || strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}

	inReplyTo := strings.TrimSpace(mr.Header.Get("In-Reply-To"))

	var plainBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever parts already decoded; a broken trailing part
			// should not discard the readable body
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := inline.ContentType()
		if err != nil {
			continue
		}

		switch contentType {
		case "text/plain":
			if plainBody == "" {
				data, err := io.ReadAll(part.Body)
				if err == nil {
					plainBody = string(data)
				}
			}
		case "text/html":
			if htmlBody == "" {
				data, err := io.ReadAll(part.Body)
				if err == nil {
					htmlBody = string(data)
				}
			}
		}
	}

	body := plainBody
	if body == "" {
		body = htmlBody
	}

	return &Message{
		Sender:    sender,
		Subject:   subject,
		Body:      body,
		InReplyTo: inReplyTo,
	}, nil
}

// mimeSender resolves the sender address from the parsed From header,
// falling back to free-form extraction on malformed address lists
func mimeSender(header *mail.Header) string {
	addrs, err := header.AddressList("From")
	if err == nil && len(addrs) > 0 && addrs[0].Address != "" {
		return addrs[0].Address
	}
	return ExtractSenderAddress(header.Get("From"))
}
