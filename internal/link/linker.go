// Package link matches validated bill facts to cards by trailing digits,
// synthesizing placeholder cards for unmatched tails.
package link

import (
	"log/slog"
	"time"

	"github.com/Veraticus/due-process/internal/model"
)

// LinkedBill pairs a validated fact with the card it belongs to.
type LinkedBill struct {
	Fact model.ValidatedBillFact
	Card model.Card
}

// Result carries the linked bills plus any placeholder cards created during
// linking. Placeholders must be persisted alongside the bills that
// reference them.
type Result struct {
	Linked          []LinkedBill
	NewPlaceholders []model.Card
}

// Linker links facts against an existing card list.
type Linker struct {
	now func() time.Time
}

// New creates a linker using the wall clock.
func New() *Linker {
	return &Linker{now: time.Now}
}

// NewAt creates a linker with an injected clock.
func NewAt(now func() time.Time) *Linker {
	return &Linker{now: now}
}

// Link attaches each fact to a card. Exact 4-digit tail matches are
// preferred over partial suffix matches; within a tier the first card in
// list order wins. Unmatched tails get exactly one placeholder per tail per
// run, shared by every fact with that tail.
func (l *Linker) Link(facts []model.ValidatedBillFact, cards []model.Card) Result {
	var res Result
	placeholders := make(map[string]model.Card)

	for _, fact := range facts {
		card, ok := findCard(cards, fact.CardTail)
		if !ok {
			card, ok = placeholders[fact.CardTail]
			if !ok {
				card = model.NewPlaceholderCard(fact.CardTail, l.now())
				placeholders[fact.CardTail] = card
				res.NewPlaceholders = append(res.NewPlaceholders, card)
				slog.Info("No card matches statement tail, created placeholder",
					"tail", fact.CardTail,
					"card_id", card.ID)
			}
		}
		res.Linked = append(res.Linked, LinkedBill{Fact: fact, Card: card})
	}

	return res
}

// findCard searches the card list in two tiers: exact Last4 equality, then
// suffix match for short tails.
func findCard(cards []model.Card, tail string) (model.Card, bool) {
	for _, c := range cards {
		if c.Last4 == tail {
			return c, true
		}
	}
	if len(tail) >= 4 {
		return model.Card{}, false
	}
	for _, c := range cards {
		if c.MatchesTail(tail) {
			return c, true
		}
	}
	return model.Card{}, false
}
