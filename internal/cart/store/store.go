package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
)

// Store persists completed sales. The sale header and its line items are
// written in one database transaction so a crash cannot leave a sale without
// its lines.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSale(ctx context.Context, sale *cart.Sale) error {
	tender, err := json.Marshal(sale.Tender)
	if err != nil {
		return fmt.Errorf("encoding tender: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sale tx: %w", err)
	}
	defer dbTx.Rollback()

	saleQuery := `
		INSERT INTO sales (id, subtotal, tax, total, method, tender, change, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	// The sale id is assigned before checkout touches persistence, so a
	// retried checkout inserts the same id and the conflict clause makes the
	// write idempotent.
	if _, err := dbTx.ExecContext(ctx, saleQuery,
		sale.ID,
		sale.Subtotal,
		sale.Tax,
		sale.Total,
		sale.Method,
		tender,
		sale.Change,
		sale.CreatedAt,
	); err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity, discount)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`

	for _, item := range sale.Items {
		if _, err := dbTx.ExecContext(ctx, itemQuery,
			sale.ID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.Discount,
		); err != nil {
			return fmt.Errorf("creating sale item: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing sale: %w", err)
	}

	return nil
}
