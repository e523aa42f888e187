// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/due-process/internal/model"
)

// BillFilter defines filtering options for bill queries.
type BillFilter struct {
	CardID     *model.CardID
	UnpaidOnly bool
	Limit      int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Card operations
	SaveCard(ctx context.Context, card *model.Card) error
	GetCardByID(ctx context.Context, id model.CardID) (*model.Card, error)
	GetCards(ctx context.Context) ([]model.Card, error)
	DeleteCard(ctx context.Context, id model.CardID) error
	UpdateCardOutstanding(ctx context.Context, id model.CardID, outstanding float64) error

	// Bill operations
	SaveBill(ctx context.Context, bill *model.BillRecord) error
	GetBillByID(ctx context.Context, id model.BillID) (*model.BillRecord, error)
	GetBills(ctx context.Context, filter BillFilter) ([]model.BillRecord, error)
	MarkBillPaid(ctx context.Context, id model.BillID, amount float64, paidType model.PaidType, paidAt time.Time) error
	MarkBillUnpaid(ctx context.Context, id model.BillID) error

	// Processed-message operations
	GetProcessedMessageIDs(ctx context.Context) (map[model.MessageID]struct{}, error)
	MarkMessagesProcessed(ctx context.Context, ids []model.MessageID) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// Inbox is the device message source collaborator. Denied permission is
// terminal for a pipeline run.
type Inbox interface {
	CheckPermission(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	Read(ctx context.Context, daysBack int) ([]model.RawMessage, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
