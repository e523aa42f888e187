package model

import "time"

// PaidType records how a bill was settled.
type PaidType string

// Valid paid types.
const (
	PaidTypeBill        PaidType = "bill"
	PaidTypeOutstanding PaidType = "outstanding"
	PaidTypeCustom      PaidType = "custom"
)

// ValidatedBillFact is a grounded extraction result: every present field has
// been independently confirmed against the original message body. This is
// the only type permitted to flow into linking and reconciliation.
type ValidatedBillFact struct {
	DueDate  *time.Time
	SMSID    MessageID
	SMSBody  string
	CardTail string
	Amount   float64
	MinDue   float64
}

// BillRecord is a ledger entry for one billing cycle of one card.
// Identity is ID; uniqueness-for-merge is (CardID, DueDate). Records with a
// nil DueDate are never merged.
type BillRecord struct {
	DueDate        *time.Time
	PaidAt         *time.Time
	PaidAmount     *float64
	PaidType       *PaidType
	ParsedAt       time.Time
	ID             BillID
	CardID         CardID
	SMSID          MessageID
	CardLast4      string
	SMSBody        string
	Amount         float64
	OriginalAmount float64
	MinDue         float64
	IsPaid         bool
}

// MarkUnpaid clears all paid bookkeeping, used when a reconciled amount has
// drifted beyond tolerance and a previously paid bill must reopen.
func (b *BillRecord) MarkUnpaid() {
	b.IsPaid = false
	b.PaidAmount = nil
	b.PaidType = nil
	b.PaidAt = nil
}

// SameCycle reports whether other targets the same (card, due date) billing
// cycle. Undated bills never share a cycle.
func (b *BillRecord) SameCycle(cardID CardID, dueDate *time.Time) bool {
	if b.CardID != cardID {
		return false
	}
	if b.DueDate == nil || dueDate == nil {
		return false
	}
	y1, m1, d1 := b.DueDate.Date()
	y2, m2, d2 := dueDate.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
