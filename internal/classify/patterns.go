// Package classify filters raw inbox messages down to credit-card billing
// statements and applies the scope and idempotency filters that precede
// extraction.
package classify

import "regexp"

// The classifier is a two-stage predicate over the raw message body:
// a body qualifies iff it matches a card pattern AND a statement pattern
// AND no exclude pattern. All matching is case-insensitive on the raw body;
// there is no other normalization.
var (
	// CardPatterns signal that the message concerns a credit card at all.
	CardPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)credit\s*card`),
		regexp.MustCompile(`(?i)\bcard\s+(?:ending|no\.?|number|xx)`),
		regexp.MustCompile(`(?i)\b(?:visa|mastercard|amex|rupay)\s+card\b`),
	}

	// StatementPatterns signal a billing-cycle statement rather than any
	// other card-related notification.
	StatementPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btotal\s+(?:amt|amount|)\s*due\b`),
		regexp.MustCompile(`(?i)\bmin(?:imum)?\s+(?:amt|amount|)\s*due\b`),
		regexp.MustCompile(`(?i)\bstatement\b`),
		regexp.MustCompile(`(?i)\bbill\s+(?:of|for|generated|is\s+ready)\b`),
		regexp.MustCompile(`(?i)\b(?:due|payable)\s+(?:date|on|by)\b`),
		regexp.MustCompile(`(?i)\boutstanding\b`),
	}

	// ExcludePatterns veto messages that match the positive sets but are
	// not statements: payment confirmations, OTPs, transaction alerts,
	// reminders.
	ExcludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)payment\s+(?:received|credited|successful|of\s+.{1,40}\s+received)`),
		regexp.MustCompile(`(?i)thank\s+you\s+for\s+(?:your\s+)?payment`),
		regexp.MustCompile(`(?i)\botp\b|one[\s-]?time\s+password`),
		regexp.MustCompile(`(?i)\b(?:spent|debited|charged)\b\s`),
		regexp.MustCompile(`(?i)transaction\s+(?:alert|of)`),
		regexp.MustCompile(`(?i)\breminder\b`),
	}
)

func matchesAny(patterns []*regexp.Regexp, body string) bool {
	for _, p := range patterns {
		if p.MatchString(body) {
			return true
		}
	}
	return false
}

// IsCandidateStatement is the classifier predicate over a single body.
func IsCandidateStatement(body string) bool {
	return matchesAny(CardPatterns, body) &&
		matchesAny(StatementPatterns, body) &&
		!matchesAny(ExcludePatterns, body)
}
