// Package normalize converts heterogeneous inbound email payloads into a
// canonical message. Provider webhooks deliver anything from base64 MIME
// blobs to loosely structured JSON objects; the shapes below are tried in a
// fixed priority order and the first match wins.
package normalize

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnrecognizedPayload is returned when no known payload shape matches
var ErrUnrecognizedPayload = errors.New("unrecognized payload format")

// UnknownSender is the sentinel address used when no sender can be extracted
const UnknownSender = "unknown@example.com"

// Subject defaults per shape
const (
	DefaultSubject  = "No Subject"
	textBodySubject = "Email from text content"
)

// Message is the canonical in-memory representation of an inbound email
type Message struct {
	Sender    string
	Subject   string
	Body      string
	InReplyTo string
}

var (
	angleAddrPattern = regexp.MustCompile(`<([^>]+)>`)
	bareAddrPattern  = regexp.MustCompile(`([a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+)`)
	envelopeFromPat  = regexp.MustCompile(`from":"([^"]+)"`)

	textFromPattern      = regexp.MustCompile(`(?im)^From:[ \t]*([^\r\n]+)`)
	textSubjectPattern   = regexp.MustCompile(`(?im)^Subject:[ \t]*([^\r\n]+)`)
	textInReplyToPattern = regexp.MustCompile(`(?im)^In-Reply-To:[ \t]*([^\r\n]+)`)
	textBodyPattern      = regexp.MustCompile(`(?s)\r?\n\r?\n(.+)$`)
)

// Normalize converts a raw inbound payload into a Message. It fails with
// ErrUnrecognizedPayload only when none of the recognized shapes match;
// malformed instances of a recognized shape fail with a descriptive error.
func Normalize(payload []byte) (*Message, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, ErrUnrecognizedPayload
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		if json.Valid([]byte(trimmed)) {
			// Valid JSON but not an object (array, number, bare string)
			return nil, ErrUnrecognizedPayload
		}
		// Not JSON at all: treat the whole payload as a plain-text blob
		return FromText(trimmed), nil
	}
	if fields == nil {
		return nil, ErrUnrecognizedPayload
	}

	// Shape 1: base64-encoded full MIME message
	if raw, ok := stringField(fields, "rawMimeBase64"); ok {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode rawMimeBase64: %w", err)
		}
		msg, err := ParseMIME(decoded)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MIME payload: %w", err)
		}
		return msg, nil
	}

	// Shape 2: base64-encoded raw buffer, with plain-text fallback
	if raw, ok := stringField(fields, "buffer"); ok {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode buffer payload: %w", err)
		}
		if msg, err := ParseMIME(decoded); err == nil {
			return msg, nil
		}
		return FromText(string(decoded)), nil
	}

	text, hasText := stringField(fields, "text")
	from, hasFrom := stringField(fields, "from")
	subject, hasSubject := stringField(fields, "subject")

	// Shape 3: direct structured JSON, used verbatim
	if hasText && hasFrom && hasSubject {
		inReplyTo, _ := stringField(fields, "inReplyTo")
		return &Message{
			Sender:    from,
			Subject:   subject,
			Body:      text,
			InReplyTo: inReplyTo,
		}, nil
	}

	// Shape 4: bare text field, run through the plain-text heuristics
	if hasText {
		return FromText(text), nil
	}

	// Shape 5: raw RFC 5322 message carried as a string field
	if raw, ok := stringField(fields, "email"); ok {
		msg, err := ParseMIME([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse raw email payload: %w", err)
		}
		return msg, nil
	}

	// Shape 6: opaque provider object, scanned by field-name aliases
	return fromProviderObject(fields)
}

// fromProviderObject handles loosely structured provider webhook objects by
// probing a case-insensitive superset of known field names.
func fromProviderObject(fields map[string]interface{}) (*Message, error) {
	from := extractAlias(fields, "from", "sender")
	subject := extractAlias(fields, "subject")
	text := extractAlias(fields, "text", "body")
	html := extractAlias(fields, "html", "htmlBody")
	headers := extractHeaders(fields)
	inReplyTo := extractInReplyTo(fields, headers)
	envelope, hasEnvelope := fields["envelope"]

	if from == "" && subject == "" && text == "" && html == "" &&
		headers == nil && !hasEnvelope {
		return nil, ErrUnrecognizedPayload
	}

	sender := ExtractSenderAddress(from)

	// The envelope sometimes carries the actual sender when the primary
	// From field is absent
	if sender == "" && hasEnvelope {
		if envFrom := envelopeSender(envelope); envFrom != "" {
			sender = ExtractSenderAddress(envFrom)
		}
	}
	if sender == "" {
		sender = UnknownSender
	}
	if subject == "" {
		subject = DefaultSubject
	}

	body := text
	if body == "" {
		body = html
	}

	return &Message{
		Sender:    sender,
		Subject:   subject,
		Body:      body,
		InReplyTo: inReplyTo,
	}, nil
}

// FromText extracts a message from a plain-text blob: From/Subject/
// In-Reply-To via line-anchored matches, body as everything after the first
// blank line, or the entire text when no header block is found.
func FromText(text string) *Message {
	body := text
	if m := textBodyPattern.FindStringSubmatch(text); m != nil {
		body = strings.TrimSpace(m[1])
	}

	sender := UnknownSender
	if m := textFromPattern.FindStringSubmatch(text); m != nil {
		if addr := ExtractSenderAddress(strings.TrimSpace(m[1])); addr != "" {
			sender = addr
		}
	}

	subject := textBodySubject
	if m := textSubjectPattern.FindStringSubmatch(text); m != nil {
		subject = strings.TrimSpace(m[1])
	}

	inReplyTo := ""
	if m := textInReplyToPattern.FindStringSubmatch(text); m != nil {
		inReplyTo = strings.TrimSpace(m[1])
	}

	return &Message{
		Sender:    sender,
		Subject:   subject,
		Body:      body,
		InReplyTo: inReplyTo,
	}
}

// ExtractSenderAddress extracts a bare email address from a free-form From
// value. Handles double-encoded JSON senders, "Name <addr>" forms and bare
// addresses; returns the input unchanged as a last resort.
func ExtractSenderAddress(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}

	// Double-encoded payloads carry the sender as a stringified JSON object
	if strings.HasPrefix(from, "{") && strings.HasSuffix(from, "}") {
		var parsed struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal([]byte(from), &parsed); err == nil && parsed.Email != "" {
			return parsed.Email
		}
	}

	if m := angleAddrPattern.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	if m := bareAddrPattern.FindStringSubmatch(from); m != nil {
		return m[1]
	}

	// Stringified envelope fragments still expose the sender
	if strings.Contains(from, "envelope") {
		if m := envelopeFromPat.FindStringSubmatch(from); m != nil {
			return m[1]
		}
	}

	return from
}

// envelopeSender pulls the sender out of an envelope value, which providers
// deliver as either an object or a stringified object
func envelopeSender(envelope interface{}) string {
	switch env := envelope.(type) {
	case map[string]interface{}:
		if s, ok := env["from"].(string); ok {
			return s
		}
	case string:
		var parsed struct {
			From string `json:"from"`
		}
		if err := json.Unmarshal([]byte(env), &parsed); err == nil && parsed.From != "" {
			return parsed.From
		}
		if m := envelopeFromPat.FindStringSubmatch(env); m != nil {
			return m[1]
		}
	}
	return ""
}

// stringField returns a non-empty string value for the exact key
func stringField(fields map[string]interface{}, key string) (string, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// extractAlias scans the object for the first non-empty value under any
// case variant of the given field names
func extractAlias(fields map[string]interface{}, names ...string) string {
	for key, v := range fields {
		if v == nil {
			continue
		}
		for _, name := range names {
			if strings.EqualFold(key, name) {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// extractHeaders returns the payload's headers object, tolerating both a
// JSON object and a JSON string that parses into one
func extractHeaders(fields map[string]interface{}) map[string]interface{} {
	for key, v := range fields {
		if !strings.EqualFold(key, "headers") || v == nil {
			continue
		}
		switch h := v.(type) {
		case map[string]interface{}:
			return h
		case string:
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(h), &parsed); err == nil {
				return parsed
			}
		}
	}
	return nil
}

// extractInReplyTo finds a threading reference in the payload's direct
// fields or its headers (In-Reply-To or References, case-insensitively)
func extractInReplyTo(fields map[string]interface{}, headers map[string]interface{}) string {
	for _, key := range []string{"In-Reply-To", "in-reply-to", "inReplyTo"} {
		if s, ok := stringField(fields, key); ok {
			return s
		}
	}
	for _, want := range []string{"in-reply-to", "reference", "references"} {
		for key, v := range headers {
			if strings.ToLower(key) != want {
				continue
			}
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
