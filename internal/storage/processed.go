package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/due-process/internal/model"
)

// GetProcessedMessageIDs returns the full processed-message set. The set
// grows monotonically; nothing ever removes entries.
func (s *SQLiteStorage) GetProcessedMessageIDs(ctx context.Context) (map[model.MessageID]struct{}, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getProcessedMessageIDs(ctx, s.db)
}

// MarkMessagesProcessed appends message ids to the processed set. The
// insert is idempotent: re-marking an already processed id is a no-op.
func (s *SQLiteStorage) MarkMessagesProcessed(ctx context.Context, ids []model.MessageID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return markMessagesProcessed(ctx, s.db, ids)
}

func getProcessedMessageIDs(ctx context.Context, ex executor) (map[model.MessageID]struct{}, error) {
	rows, err := ex.QueryContext(ctx, `SELECT message_id FROM processed_messages`)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[model.MessageID]struct{})
	for rows.Next() {
		var id model.MessageID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan message id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func markMessagesProcessed(ctx context.Context, ex executor, ids []model.MessageID) error {
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("empty message id")
		}
		if _, err := ex.ExecContext(ctx, `
			INSERT INTO processed_messages (message_id) VALUES (?)
			ON CONFLICT(message_id) DO NOTHING`, id); err != nil {
			return fmt.Errorf("failed to mark message %s processed: %w", id, err)
		}
	}
	return nil
}
