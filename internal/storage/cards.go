package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/model"
)

// SaveCard inserts or replaces a card.
func (s *SQLiteStorage) SaveCard(ctx context.Context, card *model.Card) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveCard(ctx, s.db, card)
}

// GetCardByID retrieves a single card.
func (s *SQLiteStorage) GetCardByID(ctx context.Context, id model.CardID) (*model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCardByID(ctx, s.db, id)
}

// GetCards returns all cards in creation order.
func (s *SQLiteStorage) GetCards(ctx context.Context) ([]model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCards(ctx, s.db)
}

// DeleteCard removes a card. Used by placeholder promotion when a real card
// absorbs a placeholder with the same tail.
func (s *SQLiteStorage) DeleteCard(ctx context.Context, id model.CardID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCard(ctx, s.db, id)
}

// UpdateCardOutstanding sets a card's outstanding balance.
func (s *SQLiteStorage) UpdateCardOutstanding(ctx context.Context, id model.CardID, outstanding float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateCardOutstanding(ctx, s.db, id, outstanding)
}

func saveCard(ctx context.Context, ex executor, card *model.Card) error {
	if card == nil {
		return fmt.Errorf("card is required")
	}
	if err := validateString(string(card.ID), "card.ID"); err != nil {
		return err
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO cards (id, name, last4, outstanding, is_placeholder, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			last4 = excluded.last4,
			outstanding = excluded.outstanding,
			is_placeholder = excluded.is_placeholder`,
		card.ID, card.Name, card.Last4, card.Outstanding, card.IsPlaceholder, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

func getCardByID(ctx context.Context, ex executor, id model.CardID) (*model.Card, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT id, name, last4, outstanding, is_placeholder, created_at
		FROM cards WHERE id = ?`, id)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("card %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func getCards(ctx context.Context, ex executor) ([]model.Card, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, name, last4, outstanding, is_placeholder, created_at
		FROM cards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

func deleteCard(ctx context.Context, ex executor, id model.CardID) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func updateCardOutstanding(ctx context.Context, ex executor, id model.CardID, outstanding float64) error {
	res, err := ex.ExecContext(ctx, `UPDATE cards SET outstanding = ? WHERE id = ?`, outstanding, id)
	if err != nil {
		return fmt.Errorf("failed to update outstanding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*model.Card, error) {
	var card model.Card
	if err := row.Scan(&card.ID, &card.Name, &card.Last4, &card.Outstanding,
		&card.IsPlaceholder, &card.CreatedAt); err != nil {
		return nil, err
	}
	return &card, nil
}
