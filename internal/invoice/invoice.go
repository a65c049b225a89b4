package invoice

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

var (
	ErrNotFound       = errors.New("invoice not found")
	ErrAlreadySettled = errors.New("invoice is already settled")
	ErrInvalidAmount  = errors.New("payment amount must be positive")
	ErrExceedsBalance = errors.New("payment exceeds the outstanding balance")
	ErrNotAuthorized  = errors.New("actor is not allowed to record payments")
)

// Status is the stored invoice state. Overdue is not a stored status; it is
// derived from the due date, see Invoice.IsOverdue. There is no stored
// transition out of paid: payment reversal is not modeled.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusUnpaid        Status = "unpaid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
)

// Invoice tracks the amount billed and what has been paid against it.
// OutstandingBalance always equals TotalAmount minus AmountPaid; only the
// ledger writes these fields, and always together.
type Invoice struct {
	ID                 uuid.UUID
	Number             string
	CustomerName       string
	TotalAmount        money.Money
	AmountPaid         money.Money
	OutstandingBalance money.Money
	Status             Status
	IssuedAt           time.Time
	DueDate            time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// IsOverdue reports whether the invoice is past due and still carries a
// balance. Draft invoices are not yet owed.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if i.Status == StatusPaid || i.Status == StatusDraft {
		return false
	}

	return i.DueDate.Before(now)
}

// PaymentMethod is how an invoice payment was made.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentMobile       PaymentMethod = "mobile"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Payment is one recorded payment against an invoice. Immutable once
// created; the ledger only ever appends.
type Payment struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    money.Money
	Method    PaymentMethod
	Date      time.Time
	Reference string
	ActorID   string
	CreatedAt time.Time
}
