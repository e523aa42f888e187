// Package pipeline composes the bill extraction stages into a single
// sequential run: permission gate, inbox read, classification, scope filter,
// deduplication, sanitization, extraction, grounding, linking,
// reconciliation, and the transactional persistence sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/due-process/internal/classify"
	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/extract"
	"github.com/Veraticus/due-process/internal/ground"
	"github.com/Veraticus/due-process/internal/link"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/reconcile"
	"github.com/Veraticus/due-process/internal/sanitize"
	"github.com/Veraticus/due-process/internal/service"
)

// Extractor is the external text-understanding boundary.
type Extractor interface {
	Extract(ctx context.Context, batch []model.SanitizedMessage) ([]extract.Candidate, error)
}

// Config holds pipeline configuration.
type Config struct {
	DaysBack int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DaysBack: 30,
	}
}

// Options configures a single run.
type Options struct {
	// Progress, when set, is invoked once per completed stage.
	Progress func(stage string)
	// TargetTail narrows the run to messages referencing one card's
	// trailing digits.
	TargetTail string
}

// Summary reports the outcome of a run.
type Summary struct {
	MessagesScanned int
	Classified      int
	BillsAdded      int
	BillsUpdated    int
	Success         bool
}

// Pipeline wires the stages to their collaborators.
type Pipeline struct {
	storage    service.Storage
	inbox      service.Inbox
	extractor  Extractor
	sanitizer  *sanitize.Sanitizer
	validator  *ground.Validator
	linker     *link.Linker
	reconciler *reconcile.Reconciler
	config     Config
}

// New creates a pipeline with the default configuration.
func New(storage service.Storage, inbox service.Inbox, extractor Extractor) *Pipeline {
	return NewWithConfig(storage, inbox, extractor, DefaultConfig())
}

// NewWithConfig creates a pipeline with custom configuration.
func NewWithConfig(storage service.Storage, inbox service.Inbox, extractor Extractor, config Config) *Pipeline {
	return &Pipeline{
		storage:    storage,
		inbox:      inbox,
		extractor:  extractor,
		sanitizer:  sanitize.New(),
		validator:  ground.NewValidator(),
		linker:     link.New(),
		reconciler: reconcile.New(),
		config:     config,
	}
}

// Run executes one pipeline pass. An empty inbox or a batch that yields no
// grounded bills is a success with zero bills added; permission denial and
// extractor unavailability are errors. No ledger state changes before the
// final commit, so an abort mid-run has zero observable effect.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Summary, error) {
	step := func(stage string) {
		if opts.Progress != nil {
			opts.Progress(stage)
		}
	}

	granted, err := p.inbox.CheckPermission(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("permission check failed: %w", err)
	}
	if !granted {
		granted, err = p.inbox.RequestPermission(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("permission request failed: %w", err)
		}
	}
	if !granted {
		return Summary{}, common.ErrPermissionDenied
	}
	step("permission")

	raw, err := p.inbox.Read(ctx, p.config.DaysBack)
	if err != nil {
		return Summary{}, fmt.Errorf("inbox read failed: %w", err)
	}
	step("read")

	summary := Summary{MessagesScanned: len(raw)}
	if len(raw) == 0 {
		slog.Info("Inbox empty, nothing to do")
		summary.Success = true
		return summary, nil
	}

	classified := classify.Classify(raw)
	summary.Classified = len(classified)
	step("classify")

	classified = classify.NarrowToCard(classified, opts.TargetTail)
	step("narrow")

	processed, err := p.storage.GetProcessedMessageIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load processed set: %w", err)
	}
	fresh := classify.ExcludeProcessed(classified, processed)
	step("dedupe")

	if len(fresh) == 0 {
		slog.Info("No unprocessed statement messages",
			"scanned", len(raw),
			"classified", summary.Classified)
		summary.Success = true
		return summary, nil
	}

	sanitized := p.sanitizer.Batch(fresh)
	step("sanitize")

	candidates, err := p.extractor.Extract(ctx, sanitized)
	if err != nil {
		return summary, err
	}
	step("extract")

	if len(candidates) == 0 {
		// Malformed or empty extractor output: the run succeeds with zero
		// bills and no message is marked processed, so all stay eligible
		// for retry.
		slog.Warn("Extractor produced no candidates", "batch_size", len(sanitized))
		summary.Success = true
		return summary, nil
	}

	facts := p.validator.Ground(candidates, fresh)
	step("ground")

	if len(facts) == 0 {
		slog.Info("No candidates survived grounding", "candidates", len(candidates))
		summary.Success = true
		return summary, nil
	}

	cards, err := p.storage.GetCards(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load cards: %w", err)
	}
	linked := p.linker.Link(facts, cards)
	step("link")

	existing, err := p.storage.GetBills(ctx, service.BillFilter{})
	if err != nil {
		return summary, fmt.Errorf("failed to load ledger: %w", err)
	}
	changes := p.reconciler.Reconcile(linked.Linked, existing)
	step("reconcile")

	if err := p.commit(ctx, linked.NewPlaceholders, changes); err != nil {
		return summary, err
	}
	step("persist")

	summary.BillsAdded = len(changes.Inserts)
	summary.BillsUpdated = len(changes.Updates)
	summary.Success = true

	slog.Info("Pipeline run complete",
		"scanned", summary.MessagesScanned,
		"classified", summary.Classified,
		"bills_added", summary.BillsAdded,
		"bills_updated", summary.BillsUpdated,
		"processed_marked", len(changes.ProcessedIDs))

	return summary, nil
}

// commit applies all ledger effects of the run in a single transaction:
// placeholder cards, bill inserts and updates, card outstanding
// initialization, and the processed-message bookkeeping.
func (p *Pipeline) commit(ctx context.Context, placeholders []model.Card, changes reconcile.Changes) error {
	return commitChanges(ctx, p.storage, placeholders, changes)
}

func commitChanges(ctx context.Context, storage service.Storage, placeholders []model.Card, changes reconcile.Changes) (err error) {
	tx, err := storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range placeholders {
		if err = tx.SaveCard(ctx, &placeholders[i]); err != nil {
			return fmt.Errorf("failed to save placeholder card: %w", err)
		}
	}

	for i := range changes.Inserts {
		if err = tx.SaveBill(ctx, &changes.Inserts[i]); err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}
	}
	for i := range changes.Updates {
		if err = tx.SaveBill(ctx, &changes.Updates[i]); err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}
	}

	for cardID, outstanding := range changes.CardOutstanding {
		if err = tx.UpdateCardOutstanding(ctx, cardID, outstanding); err != nil {
			return fmt.Errorf("failed to update card outstanding: %w", err)
		}
	}

	if err = tx.MarkMessagesProcessed(ctx, changes.ProcessedIDs); err != nil {
		return fmt.Errorf("failed to mark messages processed: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}
