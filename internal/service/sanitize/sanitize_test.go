package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanQuotedLines(t *testing.T) {
	body := "My own thoughts here.\n> quoted line one\n> quoted line two\nMore of mine."

	got := Clean(body)

	assert.NotContains(t, got, "quoted line")
	assert.Contains(t, got, "My own thoughts here.")
	assert.Contains(t, got, "More of mine.")
}

func TestCleanReplyAttribution(t *testing.T) {
	body := "Thanks for asking, I am doing fine.\n\nOn Mon, Jan 5, 2026 at 9:00 AM Companion <c@example.com> wrote:\n> earlier message"

	got := Clean(body)

	assert.Equal(t, "Thanks for asking, I am doing fine.", got)
}

func TestCleanSignature(t *testing.T) {
	body := "Today went well at work.\n\nBest regards,\nAlice\n555-0100"

	got := Clean(body)

	assert.Equal(t, "Today went well at work.", got)
}

func TestCleanLegalFooter(t *testing.T) {
	body := "Quick update on my week.\n\nCONFIDENTIALITY NOTICE: This email and any files transmitted with it are confidential."

	got := Clean(body)

	assert.Equal(t, "Quick update on my week.", got)
}

func TestCleanCollapsesNewlines(t *testing.T) {
	body := "first paragraph\n\n\n\n\nsecond paragraph"

	got := Clean(body)

	assert.Equal(t, "first paragraph\n\nsecond paragraph", got)
}

func TestCleanEmptyAndWhitespace(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("   \n\t  "))
}

func TestCleanIdempotent(t *testing.T) {
	body := "Real content.\n> quoted\n\nSent from my phone\n\nDISCLAIMER: legal text"

	once := Clean(body)
	twice := Clean(once)

	assert.Equal(t, once, twice)
}

func TestCleanMarkerInsideQuoteDoesNotClipContent(t *testing.T) {
	body := "I made progress on the garden today and felt proud.\n> Thanks,\n> Companion"

	got := Clean(body)

	assert.Contains(t, got, "felt proud")
}
