package model

import (
	"strings"
	"time"
)

// Card is a credit card known to the ledger. Cards are owned by the card
// management layer; the pipeline reads them for tail-digit matching and may
// create placeholders for unmatched statements.
type Card struct {
	CreatedAt     time.Time
	ID            CardID
	Name          string
	Last4         string
	Outstanding   float64
	IsPlaceholder bool
}

// MatchesTail reports whether this card's trailing digits match the given
// tail. A 4-digit tail must equal Last4 exactly; shorter tails (2-3 digits)
// match when Last4 ends with them.
func (c Card) MatchesTail(tail string) bool {
	if tail == "" || c.Last4 == "" {
		return false
	}
	if len(tail) >= 4 {
		return c.Last4 == tail
	}
	return strings.HasSuffix(c.Last4, tail)
}

// MaskedNumber renders the card number as stored for display, e.g. "XXXX XXXX XXXX 4521".
func (c Card) MaskedNumber() string {
	return "XXXX XXXX XXXX " + c.Last4
}

// NewPlaceholderCard synthesizes a card for a statement whose tail digits
// match no known card. Financial fields stay empty until a real card with
// the same tail absorbs it.
func NewPlaceholderCard(tail string, now time.Time) Card {
	return Card{
		ID:            NewCardID(),
		Name:          "Card ending " + tail,
		Last4:         tail,
		IsPlaceholder: true,
		CreatedAt:     now,
	}
}
