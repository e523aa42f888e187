package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/due-process/internal/link"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/reconcile"
	"github.com/Veraticus/due-process/internal/service"
)

// Ingestor feeds already-validated bill facts from structured sources (OFX
// statements, Plaid liabilities) through linking and reconciliation. The
// processed-message set is SMS-scoped, so structured ingestion never
// touches it.
type Ingestor struct {
	storage    service.Storage
	linker     *link.Linker
	reconciler *reconcile.Reconciler
}

// NewIngestor creates an ingestor over the given storage.
func NewIngestor(storage service.Storage) *Ingestor {
	return &Ingestor{
		storage:    storage,
		linker:     link.New(),
		reconciler: reconcile.New(),
	}
}

// Ingest links and reconciles the facts, committing all ledger effects in
// one transaction.
func (i *Ingestor) Ingest(ctx context.Context, facts []model.ValidatedBillFact) (Summary, error) {
	summary := Summary{}
	if len(facts) == 0 {
		summary.Success = true
		return summary, nil
	}

	cards, err := i.storage.GetCards(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load cards: %w", err)
	}
	linked := i.linker.Link(facts, cards)

	existing, err := i.storage.GetBills(ctx, service.BillFilter{})
	if err != nil {
		return summary, fmt.Errorf("failed to load ledger: %w", err)
	}
	changes := i.reconciler.Reconcile(linked.Linked, existing)
	changes.ProcessedIDs = nil

	if err := commitChanges(ctx, i.storage, linked.NewPlaceholders, changes); err != nil {
		return summary, err
	}

	summary.BillsAdded = len(changes.Inserts)
	summary.BillsUpdated = len(changes.Updates)
	summary.Success = true

	slog.Info("Structured ingest complete",
		"facts", len(facts),
		"bills_added", summary.BillsAdded,
		"bills_updated", summary.BillsUpdated)

	return summary, nil
}
