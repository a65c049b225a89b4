package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

// Sale is the immutable record produced by a successful checkout.
type Sale struct {
	ID        uuid.UUID
	Items     []LineItem
	Subtotal  money.Money
	Tax       money.Money
	Total     money.Money
	Method    Method
	Tender    []TenderLeg
	Change    money.Money
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=cart
type Repository interface {
	CreateSale(ctx context.Context, sale *Sale) error
}

// Service turns a validated cart into a persisted sale.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{repo: repo, now: now}
}

// Checkout validates the tender against the cart, persists the sale, and
// clears the cart. All computation and validation happen before the
// repository call, so a persistence failure leaves the cart untouched and
// the checkout can simply be retried.
func (s *Service) Checkout(ctx context.Context, c *Cart, method Method, legs []TenderLeg) (*Sale, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	change, err := c.ValidateTender(method, legs)
	if err != nil {
		return nil, err
	}

	totals := c.Totals()

	sale := &Sale{
		ID:        uuid.New(),
		Items:     c.Lines(),
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		Method:    method,
		Tender:    legs,
		Change:    change,
		CreatedAt: s.now(),
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}

	c.Clear()

	return sale, nil
}
