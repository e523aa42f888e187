// Package sanitize strips identifying substrings from message bodies before
// they cross the extraction boundary. Amounts, dates, and short tail-digit
// patterns survive sanitization; long digit runs, emails, and URLs do not.
package sanitize

import (
	"regexp"

	"github.com/Veraticus/due-process/internal/model"
)

// Pattern defines a substring class to redact.
type Pattern struct {
	Regex       *regexp.Regexp
	Name        string
	Replacement string
	Priority    int // Higher priority patterns are applied first
}

// DefaultPatterns returns the redaction set, ordered by priority. Digit runs
// of length >= 10 cover full card and phone numbers while leaving 2-4 digit
// tails and amounts intact.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "URL",
			Regex:       regexp.MustCompile(`https?://[^\s)"'<>]+`),
			Replacement: "[URL]",
			Priority:    100,
		},
		{
			Name:        "Email",
			Regex:       regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`),
			Replacement: "[EMAIL]",
			Priority:    90,
		},
		{
			Name:        "Long digit run",
			Regex:       regexp.MustCompile(`\d{10,}`),
			Replacement: "[NUMBER]",
			Priority:    80,
		},
	}
}

// Sanitizer applies a fixed redaction pattern set to message batches.
type Sanitizer struct {
	patterns []Pattern
}

// New creates a sanitizer with the default patterns.
func New() *Sanitizer {
	return &Sanitizer{patterns: DefaultPatterns()}
}

// Body redacts a single message body.
func (s *Sanitizer) Body(body string) string {
	for _, p := range s.patterns {
		body = p.Regex.ReplaceAllString(body, p.Replacement)
	}
	return body
}

// Batch sanitizes a message batch, assigning 1-based indexes used to address
// extractor output back to its source message.
func (s *Sanitizer) Batch(messages []model.RawMessage) []model.SanitizedMessage {
	out := make([]model.SanitizedMessage, 0, len(messages))
	for i, msg := range messages {
		out = append(out, model.SanitizedMessage{
			Index:      i + 1,
			Sender:     msg.Sender,
			Body:       s.Body(msg.Body),
			OriginalID: msg.ID,
		})
	}
	return out
}
