// Package reconcile merges linked bills into the existing ledger, deciding
// per bill between update-in-place and insert, and reopening paid bills
// whose amount has drifted.
package reconcile

import (
	"log/slog"
	"time"

	"github.com/Veraticus/due-process/internal/link"
	"github.com/Veraticus/due-process/internal/model"
)

// DriftTolerance is the relative amount change beyond which a paid bill is
// reset to unpaid on merge.
const DriftTolerance = 0.10

// Changes is the reconciler's output: the full set of ledger effects for a
// run, applied atomically by the persistence sink.
type Changes struct {
	CardOutstanding map[model.CardID]float64
	Inserts         []model.BillRecord
	Updates         []model.BillRecord
	ProcessedIDs    []model.MessageID
}

// Reconciler merges bills into a ledger snapshot.
type Reconciler struct {
	now func() time.Time
}

// New creates a reconciler using the wall clock.
func New() *Reconciler {
	return &Reconciler{now: time.Now}
}

// NewAt creates a reconciler with an injected clock.
func NewAt(now func() time.Time) *Reconciler {
	return &Reconciler{now: now}
}

// Reconcile merges each linked bill into the existing ledger. Uniqueness is
// (cardID, dueDate); undated bills from distinct sources never merge, with
// existing records or with each other, but an undated bill re-read from the
// same source id (an OFX statement or Plaid liability imported again)
// updates its earlier record in place. Every merged-or-inserted bill marks
// its source message processed.
func (r *Reconciler) Reconcile(linked []link.LinkedBill, existing []model.BillRecord) Changes {
	changes := Changes{
		CardOutstanding: make(map[model.CardID]float64),
	}
	now := r.now()

	// Ledger snapshot plus this run's own inserts/updates, so two messages
	// for the same cycle within one run still merge.
	working := make([]*model.BillRecord, 0, len(existing))
	for i := range existing {
		rec := existing[i]
		working = append(working, &rec)
	}
	updated := make(map[model.BillID]bool)
	inserted := make(map[model.BillID]bool)

	for _, lb := range linked {
		target := findCycle(working, lb.Card.ID, lb.Fact.DueDate)
		if target == nil && lb.Fact.DueDate == nil {
			// An undated fact whose source id is already in the ledger is
			// a re-read of the same statement, not a new bill.
			target = findSource(working, lb.Card.ID, lb.Fact.SMSID)
		}

		if target != nil {
			r.merge(target, lb.Fact, now)
			if !inserted[target.ID] {
				updated[target.ID] = true
			}
		} else {
			rec := newRecord(lb, now)
			working = append(working, &rec)
			target = &rec
			inserted[rec.ID] = true
		}

		changes.ProcessedIDs = appendUnique(changes.ProcessedIDs, lb.Fact.SMSID)

		// One-way outstanding initialization: only when the card has no
		// recorded outstanding yet.
		if lb.Fact.Amount > 0 && lb.Card.Outstanding == 0 {
			if _, set := changes.CardOutstanding[lb.Card.ID]; !set {
				changes.CardOutstanding[lb.Card.ID] = lb.Fact.Amount
			}
		}
	}

	for _, rec := range working {
		switch {
		case inserted[rec.ID]:
			changes.Inserts = append(changes.Inserts, *rec)
		case updated[rec.ID]:
			changes.Updates = append(changes.Updates, *rec)
		}
	}

	return changes
}

// merge refreshes an existing record in place. Paid bookkeeping survives
// unless the amount drifted beyond tolerance.
func (r *Reconciler) merge(rec *model.BillRecord, fact model.ValidatedBillFact, now time.Time) {
	if rec.IsPaid && exceedsDrift(rec.Amount, fact.Amount) {
		slog.Info("Bill amount drifted beyond tolerance, reopening as unpaid",
			"bill_id", rec.ID,
			"previous_amount", rec.Amount,
			"new_amount", fact.Amount)
		rec.MarkUnpaid()
	}

	rec.Amount = fact.Amount
	rec.OriginalAmount = fact.Amount
	rec.MinDue = fact.MinDue
	rec.SMSID = fact.SMSID
	rec.SMSBody = fact.SMSBody
	rec.ParsedAt = now
}

func newRecord(lb link.LinkedBill, now time.Time) model.BillRecord {
	return model.BillRecord{
		ID:             model.NewBillID(),
		CardID:         lb.Card.ID,
		CardLast4:      lb.Card.Last4,
		Amount:         lb.Fact.Amount,
		OriginalAmount: lb.Fact.Amount,
		DueDate:        lb.Fact.DueDate,
		MinDue:         lb.Fact.MinDue,
		SMSID:          lb.Fact.SMSID,
		SMSBody:        lb.Fact.SMSBody,
		ParsedAt:       now,
	}
}

func findCycle(records []*model.BillRecord, cardID model.CardID, dueDate *time.Time) *model.BillRecord {
	for _, rec := range records {
		if rec.SameCycle(cardID, dueDate) {
			return rec
		}
	}
	return nil
}

func findSource(records []*model.BillRecord, cardID model.CardID, smsID model.MessageID) *model.BillRecord {
	if smsID == "" {
		return nil
	}
	for _, rec := range records {
		if rec.CardID == cardID && rec.DueDate == nil && rec.SMSID == smsID {
			return rec
		}
	}
	return nil
}

func exceedsDrift(previous, next float64) bool {
	if previous == 0 {
		return next != 0
	}
	drift := next - previous
	if drift < 0 {
		drift = -drift
	}
	return drift/previous > DriftTolerance
}

func appendUnique(ids []model.MessageID, id model.MessageID) []model.MessageID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
