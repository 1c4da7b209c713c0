// Package sanitize strips reply quoting, signatures and legal boilerplate
// from inbound email bodies before classification and persistence.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	quotedLinePattern  = regexp.MustCompile(`(?m)^>.*$`)
	attributionPattern = regexp.MustCompile(`(?s)On.*wrote:.*$`)
	excessNewlines     = regexp.MustCompile(`\n{3,}`)
)

// signatureMarkers truncate the body from their first occurrence onward.
// Quote stripping runs first so a marker inside quoted text cannot clip the
// real content above it.
var signatureMarkers = []string{
	"-- \n", "--\n", "__________", "----------", "Sent from ",
	"Get Outlook", "Best regards", "Kind regards", "Regards,",
	"Sincerely,", "Cheers,", "Thanks,", "Thank you,",
}

// legalMarkers truncate confidentiality notices and legal footers
var legalMarkers = []string{
	"CONFIDENTIALITY NOTICE", "DISCLAIMER", "LEGAL NOTICE",
	"This email and any files", "This message is confidential",
	"This communication is intended", "The information contained in",
}

// Clean removes quoted reply text, reply attributions, signatures and legal
// footers from an email body. It is pure, total and idempotent.
func Clean(body string) string {
	content := strings.TrimSpace(body)

	// Quoted reply lines (leading ">")
	content = quotedLinePattern.ReplaceAllString(content, "")

	// "On ... wrote:" reply attribution through to the end
	content = attributionPattern.ReplaceAllString(content, "")

	content = truncateAtMarkers(content, signatureMarkers)
	content = truncateAtMarkers(content, legalMarkers)

	content = excessNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// truncateAtMarkers cuts the content at the first occurrence of each marker
// in turn, keeping only the text above it
func truncateAtMarkers(content string, markers []string) string {
	for _, marker := range markers {
		if idx := strings.Index(content, marker); idx != -1 {
			content = strings.TrimSpace(content[:idx])
		}
	}
	return content
}
