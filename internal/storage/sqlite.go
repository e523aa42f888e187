// Package storage implements the persistence layer for cards, bills, and
// the processed-message set on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// executor abstracts *sql.DB and *sql.Tx so every query helper can run
// either standalone or inside a transaction.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the shared query helpers with the
// transaction as executor.

func (t *sqliteTransaction) SaveCard(ctx context.Context, card *model.Card) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveCard(ctx, t.tx, card)
}

func (t *sqliteTransaction) GetCardByID(ctx context.Context, id model.CardID) (*model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCardByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCards(ctx context.Context) ([]model.Card, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCards(ctx, t.tx)
}

func (t *sqliteTransaction) DeleteCard(ctx context.Context, id model.CardID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCard(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateCardOutstanding(ctx context.Context, id model.CardID, outstanding float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateCardOutstanding(ctx, t.tx, id, outstanding)
}

func (t *sqliteTransaction) SaveBill(ctx context.Context, bill *model.BillRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveBill(ctx, t.tx, bill)
}

func (t *sqliteTransaction) GetBillByID(ctx context.Context, id model.BillID) (*model.BillRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBillByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetBills(ctx context.Context, filter service.BillFilter) ([]model.BillRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBills(ctx, t.tx, filter)
}

func (t *sqliteTransaction) MarkBillPaid(ctx context.Context, id model.BillID, amount float64, paidType model.PaidType, paidAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return markBillPaid(ctx, t.tx, id, amount, paidType, paidAt)
}

func (t *sqliteTransaction) MarkBillUnpaid(ctx context.Context, id model.BillID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return markBillUnpaid(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetProcessedMessageIDs(ctx context.Context) (map[model.MessageID]struct{}, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getProcessedMessageIDs(ctx, t.tx)
}

func (t *sqliteTransaction) MarkMessagesProcessed(ctx context.Context, ids []model.MessageID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return markMessagesProcessed(ctx, t.tx, ids)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot run inside a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}

func (t *sqliteTransaction) Close() error {
	return nil
}
