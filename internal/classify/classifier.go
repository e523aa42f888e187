package classify

import (
	"strings"

	"github.com/Veraticus/due-process/internal/model"
)

// Classify returns the subset of messages that are plausibly credit-card
// billing statements. Unmatched messages are silently excluded, never
// errored.
func Classify(messages []model.RawMessage) []model.RawMessage {
	var out []model.RawMessage
	for _, msg := range messages {
		if IsCandidateStatement(msg.Body) {
			out = append(out, msg)
		}
	}
	return out
}

// NarrowToCard retains only messages whose body contains the target card's
// trailing digits. An empty target is a no-op.
func NarrowToCard(messages []model.RawMessage, targetTail string) []model.RawMessage {
	if targetTail == "" {
		return messages
	}
	var out []model.RawMessage
	for _, msg := range messages {
		if strings.Contains(msg.Body, targetTail) {
			out = append(out, msg)
		}
	}
	return out
}

// ExcludeProcessed drops messages whose IDs are already in the processed
// set. This is the idempotency boundary for the whole pipeline.
func ExcludeProcessed(messages []model.RawMessage, processed map[model.MessageID]struct{}) []model.RawMessage {
	var out []model.RawMessage
	for _, msg := range messages {
		if _, ok := processed[msg.ID]; ok {
			continue
		}
		out = append(out, msg)
	}
	return out
}
