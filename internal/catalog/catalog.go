package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

var ErrNotFound = errors.New("product not found")

// Product is one sellable catalog entry. Stock balances live in the stock
// package; the catalog only knows what a product is and what it costs.
type Product struct {
	ID        uuid.UUID
	SKU       string
	Name      string
	UnitPrice money.Money
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}
