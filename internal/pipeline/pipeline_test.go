package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/extract"
	"github.com/Veraticus/due-process/internal/inbox"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/service"
	"github.com/Veraticus/due-process/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func statementMessage(id model.MessageID, tail string, amount string) model.RawMessage {
	return model.RawMessage{
		ID:        id,
		Sender:    "HDFCBK",
		Body:      "Your Credit Card XX" + tail + " statement: Total Due Rs." + amount + " by 05-Mar",
		Timestamp: time.Now(),
	}
}

func TestRunPermissionDenied(t *testing.T) {
	store := newTestStorage(t)
	in := &inbox.MockInbox{Granted: false}
	p := New(store, in, &MockExtractor{})

	_, err := p.Run(context.Background(), Options{})
	require.ErrorIs(t, err, common.ErrPermissionDenied)
	assert.Equal(t, 0, in.ReadCalls, "denied run must not read the inbox")
}

func TestRunEmptyInboxIsSuccess(t *testing.T) {
	store := newTestStorage(t)
	in := &inbox.MockInbox{Granted: true}
	ext := &MockExtractor{}
	p := New(store, in, ext)

	summary, err := p.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 0, summary.BillsAdded)
	assert.Equal(t, 0, ext.Calls, "nothing to extract from an empty inbox")
}

func TestRunExtractorUnavailable(t *testing.T) {
	store := newTestStorage(t)
	in := &inbox.MockInbox{
		Granted:  true,
		Messages: []model.RawMessage{statementMessage("m1", "4521", "12,550")},
	}
	ext := &MockExtractor{Err: common.ErrExtractorUnavailable}
	p := New(store, in, ext)

	_, err := p.Run(context.Background(), Options{})
	require.ErrorIs(t, err, common.ErrExtractorUnavailable)

	processed, err := store.GetProcessedMessageIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, processed, "failed runs must not mark messages processed")
}

func TestRunMalformedExtractionIsSuccessWithRetry(t *testing.T) {
	store := newTestStorage(t)
	in := &inbox.MockInbox{
		Granted:  true,
		Messages: []model.RawMessage{statementMessage("m1", "4521", "12,550")},
	}
	// Empty candidate list models an unparseable extractor response.
	ext := &MockExtractor{}
	p := New(store, in, ext)

	summary, err := p.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, 0, summary.BillsAdded)

	processed, err := store.GetProcessedMessageIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, processed, "message must stay eligible for retry")
}

func TestRunEndToEnd(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	card := model.Card{ID: "c1", Name: "Regalia", Last4: "4521", CreatedAt: time.Now()}
	require.NoError(t, store.SaveCard(ctx, &card))

	in := &inbox.MockInbox{
		Granted: true,
		Messages: []model.RawMessage{
			statementMessage("m1", "4521", "12,550"),
			statementMessage("m2", "7777", "900"),
			{ID: "m3", Sender: "HDFCBK", Body: "Rs.890 spent on Credit Card XX4521 at AMAZON"},
		},
	}
	ext := &MockExtractor{
		Candidates: []extract.Candidate{
			{Index: 1, CardLast4: "4521", Amount: 12550, DueDate: "2024-03-05"},
			{Index: 2, CardLast4: "7777", Amount: 900},
		},
	}
	p := New(store, in, ext)

	summary, err := p.Run(ctx, Options{})
	require.NoError(t, err)
	require.True(t, summary.Success)
	assert.Equal(t, 3, summary.MessagesScanned)
	assert.Equal(t, 2, summary.Classified, "transaction alert must be classified out")
	assert.Equal(t, 2, summary.BillsAdded)

	// Sanitized batch must never carry raw message ids.
	require.Len(t, ext.LastBatch, 2)
	assert.Equal(t, model.MessageID("m1"), ext.LastBatch[0].OriginalID)

	// The unmatched tail got exactly one placeholder.
	cards, err := store.GetCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	var placeholder *model.Card
	for i := range cards {
		if cards[i].IsPlaceholder {
			placeholder = &cards[i]
		}
	}
	require.NotNil(t, placeholder)
	assert.Equal(t, "7777", placeholder.Last4)

	// Outstanding was zero on both cards and initialized to the bill amounts.
	got, err := store.GetCardByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 12550.0, got.Outstanding)

	processed, err := store.GetProcessedMessageIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, processed, 2)
	assert.Contains(t, processed, model.MessageID("m1"))
	assert.Contains(t, processed, model.MessageID("m2"))
}

func TestRunIdempotence(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	in := &inbox.MockInbox{
		Granted:  true,
		Messages: []model.RawMessage{statementMessage("m1", "4521", "12,550")},
	}
	ext := &MockExtractor{
		Candidates: []extract.Candidate{
			{Index: 1, CardLast4: "4521", Amount: 12550, DueDate: "2024-03-05"},
		},
	}
	p := New(store, in, ext)

	first, err := p.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.BillsAdded)

	ledgerAfterFirst, err := store.GetBills(ctx, service.BillFilter{})
	require.NoError(t, err)

	second, err := p.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.BillsAdded, "second run over identical inbox must add nothing")
	assert.Equal(t, 1, ext.Calls, "processed message must not be re-extracted")

	ledgerAfterSecond, err := store.GetBills(ctx, service.BillFilter{})
	require.NoError(t, err)
	assert.Equal(t, ledgerAfterFirst, ledgerAfterSecond, "ledger must be unchanged")
}

func TestRunProcessedSetPerMessageIsolation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	// Five classified messages; the extractor only grounds three of them.
	// m4's claimed tail is a hallucination and m5 produces no candidate.
	in := &inbox.MockInbox{
		Granted: true,
		Messages: []model.RawMessage{
			statementMessage("m1", "1111", "100"),
			statementMessage("m2", "2222", "200"),
			statementMessage("m3", "3333", "300"),
			statementMessage("m4", "4444", "400"),
			statementMessage("m5", "5555", "500"),
		},
	}
	ext := &MockExtractor{
		Candidates: []extract.Candidate{
			{Index: 1, CardLast4: "1111", Amount: 100},
			{Index: 2, CardLast4: "2222", Amount: 200},
			{Index: 3, CardLast4: "3333", Amount: 300},
			{Index: 4, CardLast4: "0000", Amount: 400},
		},
	}
	p := New(store, in, ext)

	summary, err := p.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.BillsAdded)

	processed, err := store.GetProcessedMessageIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, processed, 3)
	for _, id := range []model.MessageID{"m1", "m2", "m3"} {
		assert.Contains(t, processed, id)
	}
	for _, id := range []model.MessageID{"m4", "m5"} {
		assert.NotContains(t, processed, id, "failed messages stay eligible for retry")
	}

	// A later run with an improved extractor picks up the stragglers.
	ext.Candidates = []extract.Candidate{
		{Index: 1, CardLast4: "4444", Amount: 400},
		{Index: 2, CardLast4: "5555", Amount: 500},
	}
	retry, err := p.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, retry.BillsAdded)

	processed, err = store.GetProcessedMessageIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, processed, 5)
}

func TestRunScopeFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	in := &inbox.MockInbox{
		Granted: true,
		Messages: []model.RawMessage{
			statementMessage("m1", "4521", "100"),
			statementMessage("m2", "9999", "200"),
		},
	}
	ext := &MockExtractor{
		Candidates: []extract.Candidate{
			{Index: 1, CardLast4: "4521", Amount: 100},
		},
	}
	p := New(store, in, ext)

	summary, err := p.Run(ctx, Options{TargetTail: "4521"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BillsAdded)
	require.Len(t, ext.LastBatch, 1, "scope filter must narrow the extraction batch")
}

func TestRunDriftReopensPaidBill(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	in := &inbox.MockInbox{
		Granted:  true,
		Messages: []model.RawMessage{statementMessage("m1", "4521", "1,000")},
	}
	ext := &MockExtractor{
		Candidates: []extract.Candidate{
			{Index: 1, CardLast4: "4521", Amount: 1000, DueDate: "2024-03-05"},
		},
	}
	p := New(store, in, ext)

	_, err := p.Run(ctx, Options{})
	require.NoError(t, err)

	bills, err := store.GetBills(ctx, service.BillFilter{})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.NoError(t, store.MarkBillPaid(ctx, bills[0].ID, 1000, model.PaidTypeBill, time.Now()))

	// A revised statement for the same cycle with a 50% larger amount.
	in.Messages = []model.RawMessage{statementMessage("m2", "4521", "1,500")}
	ext.Candidates = []extract.Candidate{
		{Index: 1, CardLast4: "4521", Amount: 1500, DueDate: "2024-03-05"},
	}

	summary, err := p.Run(ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.BillsAdded)
	assert.Equal(t, 1, summary.BillsUpdated)

	bills, err = store.GetBills(ctx, service.BillFilter{})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.False(t, bills[0].IsPaid, "drift beyond tolerance must reopen the bill")
	assert.Equal(t, 1500.0, bills[0].Amount)
	assert.Nil(t, bills[0].PaidAmount)
}
