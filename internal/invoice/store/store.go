package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanInvoice reads an invoice row from the scanner.
// Expected column order: id, number, customer_name, total_amount, amount_paid,
// outstanding_balance, status, issued_at, due_date, created_at, updated_at
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.CustomerName,
		&inv.TotalAmount, &inv.AmountPaid, &inv.OutstandingBalance,
		&statusStr, &inv.IssuedAt, &inv.DueDate,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)

	return &inv, nil
}

const selectInvoiceColumns = `
	id, number, customer_name, total_amount, amount_paid, outstanding_balance,
	status, issued_at, due_date, created_at, updated_at
`

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListOutstanding(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE status IN ($1, $2)
		ORDER BY due_date ASC`

	rows, err := s.db.QueryContext(ctx, query, invoice.StatusUnpaid, invoice.StatusPartiallyPaid)
	if err != nil {
		return nil, fmt.Errorf("listing outstanding invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

func (s *Store) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, date, reference, actor_id, created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*invoice.Payment

	for rows.Next() {
		var p invoice.Payment

		var methodStr string

		if err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.Amount, &methodStr,
			&p.Date, &p.Reference, &p.ActorID, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		p.Method = invoice.PaymentMethod(methodStr)
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

type paymentTx struct {
	tx *sql.Tx
}

// BeginPayment opens the transaction that makes the payment row and the
// invoice field update commit together. The row lock on the invoice also
// serializes concurrent submissions across processes.
func (s *Store) BeginPayment(ctx context.Context, invoiceID uuid.UUID) (invoice.PaymentTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payment tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT id FROM invoices WHERE id = $1 FOR UPDATE", invoiceID); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("locking invoice row: %w", err)
	}

	return &paymentTx{tx: dbTx}, nil
}

func (ptx *paymentTx) Commit() error   { return ptx.tx.Commit() }
func (ptx *paymentTx) Rollback() error { return ptx.tx.Rollback() }

func (ptx *paymentTx) AppendPayment(ctx context.Context, p *invoice.Payment) error {
	query := `
		INSERT INTO payments (id, invoice_id, amount, method, date, reference, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err := ptx.tx.QueryRowContext(ctx, query,
		p.ID,
		p.InvoiceID,
		p.Amount,
		p.Method,
		p.Date,
		p.Reference,
		p.ActorID,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending payment: %w", err)
	}

	return nil
}

func (ptx *paymentTx) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amountPaid, outstanding money.Money, status invoice.Status) error {
	query := `
		UPDATE invoices
		SET amount_paid = $1, outstanding_balance = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	_, err := ptx.tx.ExecContext(ctx, query, amountPaid, outstanding, status, invoiceID)
	if err != nil {
		return fmt.Errorf("applying payment to invoice: %w", err)
	}

	return nil
}
