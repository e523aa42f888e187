// Package model defines the core domain types shared across the pipeline.
package model

import "time"

// RawMessage is a single message as read from the device inbox. Immutable
// once read; identity is ID.
type RawMessage struct {
	Timestamp time.Time
	ID        MessageID
	Sender    string
	Body      string
}

// SanitizedMessage is a raw message with sensitive substrings replaced by
// placeholder tokens. Index is the 1-based position in the current batch,
// used to address extractor output back to its source. OriginalID is a
// non-owning back-reference used solely for grounding lookups.
type SanitizedMessage struct {
	Sender     string
	Body       string
	OriginalID MessageID
	Index      int
}
