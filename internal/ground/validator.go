package ground

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/due-process/internal/extract"
	"github.com/Veraticus/due-process/internal/model"
)

// AmountTolerance is the relative tolerance within which an extracted amount
// is accepted as matching a scanned source amount.
const AmountTolerance = 0.10

// Suspicious due date bounds relative to processing time. Dates outside the
// window are logged, not rejected.
const (
	maxDaysPast   = 30
	maxDaysFuture = 60
)

// tailMarkerRe derives tail digits from the original body when the
// candidate omitted them: "XX4521", "****4521", "ending 85", "xx85",
// "ending in 4521". Captures of 2-4 digits only.
var tailMarkerRe = regexp.MustCompile(`(?i)(?:x{2,4}|\*{2,4}|ending(?:\s+in)?\s*|card\s+no\.?\s*)(\d{2,4})\b`)

// Validator grounds extraction candidates against original message bodies.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt creates a validator with an injected clock.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Ground validates each candidate against its original message. Candidates
// whose mandatory checks fail are dropped entirely; their source messages
// stay unprocessed and eligible for retry.
func (v *Validator) Ground(candidates []extract.Candidate, originals []model.RawMessage) []model.ValidatedBillFact {
	var facts []model.ValidatedBillFact

	for _, c := range candidates {
		if c.Index < 1 || c.Index > len(originals) {
			slog.Warn("Candidate index out of range, dropping", "index", c.Index, "batch_size", len(originals))
			continue
		}
		original := originals[c.Index-1]

		tail, ok := v.groundCardTail(c.CardLast4, original.Body)
		if !ok {
			slog.Debug("No confirmable card digits, dropping candidate",
				"message_id", original.ID,
				"claimed_tail", c.CardLast4)
			continue
		}

		fact := model.ValidatedBillFact{
			SMSID:    original.ID,
			SMSBody:  original.Body,
			CardTail: tail,
		}

		scanned := ScanAmounts(original.Body)
		fact.Amount = v.groundAmount(c.Amount, scanned, original.ID)
		fact.MinDue = groundMinDue(c.MinDue, scanned)
		fact.DueDate = v.groundDueDate(c.DueDate, original.ID)

		facts = append(facts, fact)
	}

	return facts
}

// groundCardTail confirms the candidate's tail digits against the body, or
// derives them from tail markers when the candidate omitted them. A claimed
// tail that does not occur in the body is a hallucination and fails the
// whole candidate; card digits are the one mandatory field.
func (v *Validator) groundCardTail(claimed, body string) (string, bool) {
	claimed = strings.TrimSpace(claimed)
	if claimed != "" {
		if len(claimed) >= 2 && len(claimed) <= 4 &&
			strings.Contains(strings.ToLower(body), strings.ToLower(claimed)) {
			return claimed, true
		}
		return "", false
	}

	m := tailMarkerRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	tail := m[1]
	if len(tail) < 2 || len(tail) > 4 {
		return "", false
	}
	return tail, true
}

// groundAmount keeps the candidate amount when it is within tolerance of
// any scanned source amount, otherwise replaces it with the largest scanned
// amount. With no scanned amounts the candidate value survives only if zero.
func (v *Validator) groundAmount(claimed float64, scanned []float64, msgID model.MessageID) float64 {
	if len(scanned) == 0 {
		if claimed != 0 {
			slog.Warn("Extracted amount has no source token, zeroing",
				"message_id", msgID,
				"claimed", claimed)
			return 0
		}
		return 0
	}

	if claimed > 0 && withinTolerance(claimed, scanned, AmountTolerance) {
		return claimed
	}

	corrected := maxAmount(scanned)
	if claimed != 0 {
		slog.Debug("Extracted amount outside tolerance, correcting from source",
			"message_id", msgID,
			"claimed", claimed,
			"corrected", corrected)
	}
	return corrected
}

// groundMinDue keeps the candidate minimum due only when it matches a
// scanned source amount; anything unconfirmable defaults to zero.
func groundMinDue(claimed float64, scanned []float64) float64 {
	if claimed <= 0 {
		return 0
	}
	if withinTolerance(claimed, scanned, AmountTolerance) {
		return claimed
	}
	return 0
}

// groundDueDate parses the candidate date, logging dates suspiciously far
// from processing time without rejecting them.
func (v *Validator) groundDueDate(raw string, msgID model.MessageID) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		slog.Debug("Unparseable due date, dropping field", "message_id", msgID, "raw", raw)
		return nil
	}

	now := v.now()
	if parsed.Before(now.AddDate(0, 0, -maxDaysPast)) || parsed.After(now.AddDate(0, 0, maxDaysFuture)) {
		slog.Warn("Due date suspiciously far from processing time, keeping",
			"message_id", msgID,
			"due_date", parsed.Format("2006-01-02"))
	}

	return &parsed
}
