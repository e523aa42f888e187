package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/due-process/internal/common"
	"github.com/Veraticus/due-process/internal/model"
	"github.com/Veraticus/due-process/internal/service"
)

// SaveBill inserts or replaces a bill record.
func (s *SQLiteStorage) SaveBill(ctx context.Context, bill *model.BillRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveBill(ctx, s.db, bill)
}

// GetBillByID retrieves a single bill record.
func (s *SQLiteStorage) GetBillByID(ctx context.Context, id model.BillID) (*model.BillRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBillByID(ctx, s.db, id)
}

// GetBills returns bill records matching the filter, newest due date first.
func (s *SQLiteStorage) GetBills(ctx context.Context, filter service.BillFilter) ([]model.BillRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBills(ctx, s.db, filter)
}

// MarkBillPaid records payment bookkeeping for a bill.
func (s *SQLiteStorage) MarkBillPaid(ctx context.Context, id model.BillID, amount float64, paidType model.PaidType, paidAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return markBillPaid(ctx, s.db, id, amount, paidType, paidAt)
}

// MarkBillUnpaid clears payment bookkeeping for a bill.
func (s *SQLiteStorage) MarkBillUnpaid(ctx context.Context, id model.BillID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return markBillUnpaid(ctx, s.db, id)
}

func saveBill(ctx context.Context, ex executor, bill *model.BillRecord) error {
	if bill == nil {
		return fmt.Errorf("bill is required")
	}
	if err := validateString(string(bill.ID), "bill.ID"); err != nil {
		return err
	}
	if err := validateString(string(bill.CardID), "bill.CardID"); err != nil {
		return err
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO bills (id, card_id, card_last4, amount, original_amount, due_date,
			min_due, is_paid, paid_amount, paid_type, paid_at, sms_id, sms_body, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			original_amount = excluded.original_amount,
			due_date = excluded.due_date,
			min_due = excluded.min_due,
			is_paid = excluded.is_paid,
			paid_amount = excluded.paid_amount,
			paid_type = excluded.paid_type,
			paid_at = excluded.paid_at,
			sms_id = excluded.sms_id,
			sms_body = excluded.sms_body,
			parsed_at = excluded.parsed_at`,
		bill.ID, bill.CardID, bill.CardLast4, bill.Amount, bill.OriginalAmount,
		bill.DueDate, bill.MinDue, bill.IsPaid, bill.PaidAmount,
		paidTypeValue(bill.PaidType), bill.PaidAt, bill.SMSID, bill.SMSBody, bill.ParsedAt)
	if err != nil {
		return fmt.Errorf("failed to save bill: %w", err)
	}
	return nil
}

func getBillByID(ctx context.Context, ex executor, id model.BillID) (*model.BillRecord, error) {
	row := ex.QueryRowContext(ctx, billSelect+` WHERE id = ?`, id)

	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

func getBills(ctx context.Context, ex executor, filter service.BillFilter) ([]model.BillRecord, error) {
	query := billSelect
	var args []any
	var conditions []string

	if filter.CardID != nil {
		conditions = append(conditions, "card_id = ?")
		args = append(args, *filter.CardID)
	}
	if filter.UnpaidOnly {
		conditions = append(conditions, "is_paid = 0")
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY due_date IS NULL, due_date DESC, parsed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.BillRecord
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	return bills, rows.Err()
}

func markBillPaid(ctx context.Context, ex executor, id model.BillID, amount float64, paidType model.PaidType, paidAt time.Time) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE bills SET is_paid = 1, paid_amount = ?, paid_type = ?, paid_at = ?
		WHERE id = ?`, amount, string(paidType), paidAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark bill paid: %w", err)
	}
	return requireAffected(res, id)
}

func markBillUnpaid(ctx context.Context, ex executor, id model.BillID) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE bills SET is_paid = 0, paid_amount = NULL, paid_type = NULL, paid_at = NULL
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark bill unpaid: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id model.BillID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bill %s: %w", id, common.ErrNotFound)
	}
	return nil
}

const billSelect = `
	SELECT id, card_id, card_last4, amount, original_amount, due_date,
		min_due, is_paid, paid_amount, paid_type, paid_at, sms_id, sms_body, parsed_at
	FROM bills`

func scanBill(row rowScanner) (*model.BillRecord, error) {
	var bill model.BillRecord
	var dueDate, paidAt, parsedAt sql.NullTime
	var paidAmount sql.NullFloat64
	var paidType sql.NullString

	if err := row.Scan(&bill.ID, &bill.CardID, &bill.CardLast4, &bill.Amount,
		&bill.OriginalAmount, &dueDate, &bill.MinDue, &bill.IsPaid,
		&paidAmount, &paidType, &paidAt, &bill.SMSID, &bill.SMSBody, &parsedAt); err != nil {
		return nil, err
	}

	if dueDate.Valid {
		d := dueDate.Time
		bill.DueDate = &d
	}
	if paidAmount.Valid {
		v := paidAmount.Float64
		bill.PaidAmount = &v
	}
	if paidType.Valid {
		pt := model.PaidType(paidType.String)
		bill.PaidType = &pt
	}
	if paidAt.Valid {
		at := paidAt.Time
		bill.PaidAt = &at
	}
	if parsedAt.Valid {
		bill.ParsedAt = parsedAt.Time
	}
	return &bill, nil
}

func paidTypeValue(pt *model.PaidType) any {
	if pt == nil {
		return nil
	}
	return string(*pt)
}
