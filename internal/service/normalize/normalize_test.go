package normalize

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMIME = "From: Alice <alice@example.com>\r\n" +
	"To: companion@example.com\r\n" +
	"Subject: My day\r\n" +
	"In-Reply-To: <prev-123@example.com>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Today was a good day.\r\n"

func TestNormalizeRawMimeBase64(t *testing.T) {
	payload, err := json.Marshal(map[string]string{
		"rawMimeBase64": base64.StdEncoding.EncodeToString([]byte(sampleMIME)),
	})
	require.NoError(t, err)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", msg.Sender)
	assert.Equal(t, "My day", msg.Subject)
	assert.Equal(t, "Today was a good day.", strings.TrimSpace(msg.Body))
	assert.Equal(t, "<prev-123@example.com>", msg.InReplyTo)
}

func TestNormalizeRawMimeBase64Invalid(t *testing.T) {
	payload := []byte(`{"rawMimeBase64": "not base64 at all!!!"}`)

	_, err := Normalize(payload)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnrecognizedPayload)
}

func TestNormalizeBufferWithMIME(t *testing.T) {
	payload, err := json.Marshal(map[string]string{
		"buffer": base64.StdEncoding.EncodeToString([]byte(sampleMIME)),
	})
	require.NoError(t, err)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", msg.Sender)
	assert.Equal(t, "My day", msg.Subject)
}

func TestNormalizeStructuredJSON(t *testing.T) {
	payload := []byte(`{
		"from": "bob@example.com",
		"subject": "Hello",
		"text": "Just saying hi",
		"inReplyTo": "<ref-1@example.com>"
	}`)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", msg.Sender)
	assert.Equal(t, "Hello", msg.Subject)
	assert.Equal(t, "Just saying hi", msg.Body)
	assert.Equal(t, "<ref-1@example.com>", msg.InReplyTo)
}

func TestNormalizeBareTextField(t *testing.T) {
	text := "From: carol@example.com\nSubject: Checking in\n\nHow are things going?"
	payload, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "carol@example.com", msg.Sender)
	assert.Equal(t, "Checking in", msg.Subject)
	assert.Equal(t, "How are things going?", msg.Body)
}

func TestNormalizePlainTextPayload(t *testing.T) {
	payload := []byte("From: dave@example.com\nSubject: Notes\n\nSome body text here")

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "dave@example.com", msg.Sender)
	assert.Equal(t, "Notes", msg.Subject)
	assert.Equal(t, "Some body text here", msg.Body)
}

func TestNormalizePlainTextWithoutHeaders(t *testing.T) {
	msg, err := Normalize([]byte("just a few words with no structure"))
	require.NoError(t, err)

	assert.Equal(t, UnknownSender, msg.Sender)
	assert.Equal(t, "Email from text content", msg.Subject)
	assert.Equal(t, "just a few words with no structure", msg.Body)
}

func TestNormalizeRawEmailField(t *testing.T) {
	payload, err := json.Marshal(map[string]string{"email": sampleMIME})
	require.NoError(t, err)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", msg.Sender)
	assert.Equal(t, "My day", msg.Subject)
}

func TestNormalizeProviderObject(t *testing.T) {
	payload := []byte(`{
		"Sender": "Eve <eve@example.com>",
		"Body": "Hello there",
		"headers": {"In-Reply-To": "<thread-9@example.com>"}
	}`)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "eve@example.com", msg.Sender)
	assert.Equal(t, DefaultSubject, msg.Subject)
	assert.Equal(t, "Hello there", msg.Body)
	assert.Equal(t, "<thread-9@example.com>", msg.InReplyTo)
}

func TestNormalizeProviderObjectStringHeaders(t *testing.T) {
	payload := []byte(`{
		"from": "frank@example.com",
		"html": "<p>Hi</p>",
		"headers": "{\"References\": \"<old-1@example.com>\"}"
	}`)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "frank@example.com", msg.Sender)
	assert.Equal(t, "<p>Hi</p>", msg.Body)
	assert.Equal(t, "<old-1@example.com>", msg.InReplyTo)
}

func TestNormalizeEnvelopeSenderFallback(t *testing.T) {
	payload := []byte(`{
		"subject": "No from field",
		"envelope": "{\"from\":\"grace@example.com\",\"to\":[\"companion@example.com\"]}"
	}`)

	msg, err := Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "grace@example.com", msg.Sender)
	assert.Equal(t, "No from field", msg.Subject)
}

func TestNormalizeUnrecognized(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"whitespace":   "   \n  ",
		"json array":   `[1, 2, 3]`,
		"json number":  `42`,
		"json string":  `"hello"`,
		"empty object": `{}`,
		"null":         `null`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize([]byte(payload))
			assert.ErrorIs(t, err, ErrUnrecognizedPayload)
		})
	}
}

func TestExtractSenderAddress(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"angle brackets", "Alice Smith <alice@example.com>", "alice@example.com"},
		{"bare address", "bob@example.com", "bob@example.com"},
		{"address in text", "reply to carol@example.com please", "carol@example.com"},
		{"json object", `{"email":"dave@example.com","name":"Dave"}`, "dave@example.com"},
		{"envelope fragment", `envelope={"from":"eve@example.com"}`, "eve@example.com"},
		{"no address", "not an address", "not an address"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractSenderAddress(tc.in))
		})
	}
}

func TestFromTextInReplyTo(t *testing.T) {
	text := "From: a@b.com\nIn-Reply-To: <m-1@b.com>\n\nbody"
	msg := FromText(text)
	assert.Equal(t, "<m-1@b.com>", msg.InReplyTo)
}

func TestParseMIMEMultipart(t *testing.T) {
	raw := "From: Hank <hank@example.com>\r\n" +
		"Subject: Mixed\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=xyz\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<b>rich</b>\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain wins\r\n" +
		"--xyz--\r\n"

	msg, err := ParseMIME([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "hank@example.com", msg.Sender)
	assert.Equal(t, "plain wins", strings.TrimSpace(msg.Body))
}
