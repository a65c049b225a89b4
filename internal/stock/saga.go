package stock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/audit"
)

//go:generate mockgen -source=saga.go -destination=repository_mock.go -package=stock
type Repository interface {
	GetStock(ctx context.Context, productID uuid.UUID) (Account, error)
	SetStock(ctx context.Context, productID uuid.UUID, onHand int64) error
}

// Saga moves stock between two products as a single logical operation.
// There is no cross-row database transaction available here, so the credit
// leg compensates the debit leg on failure instead.
type Saga struct {
	repo  Repository
	audit audit.Log

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewSaga(repo Repository, auditLog audit.Log) *Saga {
	if auditLog == nil {
		auditLog = audit.Discard{}
	}

	return &Saga{
		repo:  repo,
		audit: auditLog,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// productLock returns the mutex serializing mutations of one product.
func (s *Saga) productLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}

	return l
}

// lockPair locks both product mutexes in id order, so two transfers running
// in opposite directions cannot deadlock.
func (s *Saga) lockPair(a, b uuid.UUID) func() {
	first, second := a, b
	if second.String() < first.String() {
		first, second = second, first
	}

	fl, sl := s.productLock(first), s.productLock(second)
	fl.Lock()
	sl.Lock()

	return func() {
		sl.Unlock()
		fl.Unlock()
	}
}

// Transfer runs the saga: validate, debit the source, credit the
// destination, compensate the source if the credit fails, then audit
// best-effort. Once the debit has been written the operation runs to
// completion or compensation; ctx cancellation is only honored before that.
func (s *Saga) Transfer(ctx context.Context, t Transfer) (Result, error) {
	if t.SourceID == t.DestinationID {
		return Result{}, ErrSameProduct
	}

	if t.Quantity <= 0 {
		return Result{}, ErrInvalidQuantity
	}

	if t.Reason == "" {
		return Result{}, ErrMissingReason
	}

	unlock := s.lockPair(t.SourceID, t.DestinationID)
	defer unlock()

	source, err := s.repo.GetStock(ctx, t.SourceID)
	if err != nil {
		return Result{}, err
	}

	if source.OnHand < t.Quantity {
		return Result{}, ErrInsufficientStock
	}

	destination, err := s.repo.GetStock(ctx, t.DestinationID)
	if err != nil {
		return Result{}, err
	}

	// Debit the source. Nothing is committed yet, so a failure here needs
	// no compensation.
	if err := s.repo.SetStock(ctx, t.SourceID, source.OnHand-t.Quantity); err != nil {
		return Result{}, &TransferError{State: StateDebitingSource, Err: err}
	}

	// Credit the destination. From here on the saga must leave the balances
	// consistent: either roll the source back or flag for reconciliation.
	if err := s.repo.SetStock(ctx, t.DestinationID, destination.OnHand+t.Quantity); err != nil {
		if compErr := s.repo.SetStock(context.WithoutCancel(ctx), t.SourceID, source.OnHand); compErr != nil {
			slog.Error("stock transfer compensation failed, manual reconciliation required",
				"source", t.SourceID,
				"destination", t.DestinationID,
				"quantity", t.Quantity,
				"credit_error", err,
				"compensation_error", compErr,
			)

			return Result{}, &TransferError{
				State:               StateCompensatingSource,
				NeedsReconciliation: true,
				Err:                 err,
			}
		}

		return Result{}, &TransferError{State: StateCreditingDestination, Err: err}
	}

	s.audit.Record(ctx, audit.Entry{
		Action: "stock.transfer",
		Actor:  t.Actor,
		Detail: map[string]any{
			"source":      t.SourceID.String(),
			"destination": t.DestinationID.String(),
			"quantity":    t.Quantity,
			"reason":      t.Reason,
		},
	})

	return Result{
		SourceOnHand:      source.OnHand - t.Quantity,
		DestinationOnHand: destination.OnHand + t.Quantity,
	}, nil
}
