package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/stock"
)

// Store persists per-product on-hand balances. Serialization of concurrent
// mutations is the saga's job; the store is a plain read/write surface.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetStock(ctx context.Context, productID uuid.UUID) (stock.Account, error) {
	query := `SELECT product_id, on_hand FROM stock_accounts WHERE product_id = $1`

	var account stock.Account

	err := s.db.QueryRowContext(ctx, query, productID).Scan(&account.ProductID, &account.OnHand)
	if err != nil {
		if err == sql.ErrNoRows {
			return stock.Account{}, stock.ErrProductNotFound
		}

		return stock.Account{}, fmt.Errorf("getting stock: %w", err)
	}

	return account, nil
}

func (s *Store) SetStock(ctx context.Context, productID uuid.UUID, onHand int64) error {
	query := `
		INSERT INTO stock_accounts (product_id, on_hand, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id) DO UPDATE SET on_hand = EXCLUDED.on_hand, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, productID, onHand)
	if err != nil {
		return fmt.Errorf("setting stock: %w", err)
	}

	return nil
}
