package invoice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/audit"
	"github.com/MrJamesThe3rd/tilly/internal/auth"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

//go:generate mockgen -source=ledger.go -destination=repository_mock.go -package=invoice
type Repository interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListOutstanding(ctx context.Context) ([]*Invoice, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)

	BeginPayment(ctx context.Context, invoiceID uuid.UUID) (PaymentTx, error)
}

// PaymentTx applies one payment atomically: the appended payment row and the
// invoice's paid/outstanding/status fields commit together or not at all.
type PaymentTx interface {
	AppendPayment(ctx context.Context, p *Payment) error
	ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amountPaid, outstanding money.Money, status Status) error
	Commit() error
	Rollback() error
}

// Ledger records payments against invoices, keeping the settlement decisions
// tolerant to sub-cent rounding residue.
type Ledger struct {
	repo  Repository
	roles auth.RoleProvider
	audit audit.Log
	now   func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewLedger(repo Repository, roles auth.RoleProvider, auditLog audit.Log, now func() time.Time) *Ledger {
	if auditLog == nil {
		auditLog = audit.Discard{}
	}

	if now == nil {
		now = time.Now
	}

	return &Ledger{
		repo:  repo,
		roles: roles,
		audit: auditLog,
		now:   now,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// invoiceLock serializes payments per invoice. Two concurrent submissions
// must not both pass the settlement checks against a stale balance.
func (l *Ledger) invoiceLock(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}

	return lock
}

type RecordPaymentParams struct {
	InvoiceID uuid.UUID
	Amount    money.Money
	Method    PaymentMethod
	Date      time.Time // zero value means now
	Reference string
}

// RecordPayment validates and applies one payment. Validation is pure and
// retryable; the payment row and the invoice fields are written in a single
// transaction, so a partial update where AmountPaid moves but status does
// not cannot happen.
func (l *Ledger) RecordPayment(ctx context.Context, params RecordPaymentParams) (*Invoice, *Payment, error) {
	lock := l.invoiceLock(params.InvoiceID)
	lock.Lock()
	defer lock.Unlock()

	inv, err := l.repo.GetInvoice(ctx, params.InvoiceID)
	if err != nil {
		return nil, nil, err
	}

	outstanding := inv.TotalAmount.Sub(inv.AmountPaid)

	// A residual balance below one cent is rounding noise, not debt. This
	// also rejects a double-submitted final payment.
	if outstanding.IsEffectivelyZero() {
		return nil, nil, ErrAlreadySettled
	}

	if !params.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	// A "full payment" keyed in a hair above the displayed balance still
	// goes through; anything beyond the tolerance is a real overpayment.
	if params.Amount.Sub(outstanding).GreaterThan(money.New(money.MinUnit)) {
		return nil, nil, ErrExceedsBalance
	}

	actor, err := l.roles.CurrentActor(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving actor: %w", err)
	}

	if !actor.Role.CanRecordPayments() {
		return nil, nil, ErrNotAuthorized
	}

	date := params.Date
	if date.IsZero() {
		date = l.now()
	}

	payment := &Payment{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		Amount:    params.Amount,
		Method:    params.Method,
		Date:      date,
		Reference: params.Reference,
		ActorID:   actor.ID,
	}

	newPaid := inv.AmountPaid.Add(params.Amount)
	newOutstanding := inv.TotalAmount.Sub(newPaid)

	status := inv.Status

	switch {
	// A tolerated overshoot leaves the balance a hair below zero; both
	// residues mean settled.
	case newOutstanding.IsEffectivelyZero() || newOutstanding.IsNegative():
		status = StatusPaid
	case newPaid.IsPositive():
		status = StatusPartiallyPaid
	}

	tx, err := l.repo.BeginPayment(ctx, inv.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning payment tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.AppendPayment(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("appending payment: %w", err)
	}

	if err := tx.ApplyPayment(ctx, inv.ID, newPaid, newOutstanding, status); err != nil {
		return nil, nil, fmt.Errorf("applying payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing payment: %w", err)
	}

	inv.AmountPaid = newPaid
	inv.OutstandingBalance = newOutstanding
	inv.Status = status

	l.audit.Record(ctx, audit.Entry{
		Action: "invoice.payment",
		Actor:  actor.ID,
		Detail: map[string]any{
			"invoice":   inv.ID.String(),
			"amount":    params.Amount.String(),
			"method":    string(params.Method),
			"reference": params.Reference,
		},
	})

	return inv, payment, nil
}

// Get returns an invoice by id.
func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return l.repo.GetInvoice(ctx, id)
}

// ListOutstanding returns unpaid and partially paid invoices.
func (l *Ledger) ListOutstanding(ctx context.Context) ([]*Invoice, error) {
	return l.repo.ListOutstanding(ctx)
}

// ListPayments returns the payments recorded against an invoice.
func (l *Ledger) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	return l.repo.ListPayments(ctx, invoiceID)
}
