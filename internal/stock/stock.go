package stock

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrSameProduct       = errors.New("source and destination are the same product")
	ErrInvalidQuantity   = errors.New("transfer quantity must be positive")
	ErrMissingReason     = errors.New("transfer reason is required")
	ErrInsufficientStock = errors.New("source has insufficient stock")
	ErrProductNotFound   = errors.New("product stock not found")
)

// Account is the on-hand balance for one product.
type Account struct {
	ProductID uuid.UUID
	OnHand    int64
}

// Transfer moves a quantity from one product's balance to another's. It only
// exists for the duration of the saga; the audit log keeps the durable trace.
type Transfer struct {
	SourceID      uuid.UUID
	DestinationID uuid.UUID
	Quantity      int64
	Reason        string
	Actor         string
}

// State is the saga's position when an outcome was produced.
type State string

const (
	StateValidating            State = "validating"
	StateDebitingSource        State = "debiting_source"
	StateCreditingDestination  State = "crediting_destination"
	StateCompensatingSource    State = "compensating_source"
	StateCompleted             State = "completed"
	StateFailed                State = "failed"
)

// TransferError reports a failed persistence step of the saga.
// NeedsReconciliation is set when the compensation itself failed: the source
// was debited, the destination was not credited, and someone has to fix the
// balances by hand.
type TransferError struct {
	State               State
	NeedsReconciliation bool
	Err                 error
}

func (e *TransferError) Error() string {
	if e.NeedsReconciliation {
		return fmt.Sprintf("stock transfer failed at %s, manual reconciliation required: %v", e.State, e.Err)
	}

	return fmt.Sprintf("stock transfer failed at %s: %v", e.State, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Result reports the balances after a completed transfer.
type Result struct {
	SourceOnHand      int64
	DestinationOnHand int64
}
