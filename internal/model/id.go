package model

import "github.com/google/uuid"

// MessageID identifies a raw inbox message. It is opaque and stable across
// runs; the processed-message set is keyed on it.
type MessageID string

// CardID identifies a card in the ledger.
type CardID string

// BillID identifies a bill record in the ledger.
type BillID string

// NewCardID mints a fresh card identifier.
func NewCardID() CardID {
	return CardID(uuid.NewString())
}

// NewBillID mints a fresh bill identifier.
func NewBillID() BillID {
	return BillID(uuid.NewString())
}

func (id MessageID) String() string { return string(id) }
func (id CardID) String() string    { return string(id) }
func (id BillID) String() string    { return string(id) }
