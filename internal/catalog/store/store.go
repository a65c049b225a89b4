package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
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

// scanProduct reads a product row from the scanner.
// Expected column order: id, sku, name, unit_price, created_at, updated_at, deleted_at
func scanProduct(s scanner) (*catalog.Product, error) {
	var p catalog.Product

	if err := s.Scan(
		&p.ID, &p.SKU, &p.Name, &p.UnitPrice,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

const selectProductColumns = `id, sku, name, unit_price, created_at, updated_at, deleted_at`

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (sku, name, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.SKU,
		p.Name,
		p.UnitPrice,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products
		WHERE sku = $1 AND deleted_at IS NULL`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, sku))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product by sku: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products
		WHERE deleted_at IS NULL`

	var args []any

	if filter.Search != "" {
		query += " AND (name ILIKE $1 OR sku ILIKE $1)"

		args = append(args, "%"+filter.Search+"%")
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (s *Store) UpdatePrice(ctx context.Context, id uuid.UUID, unitPrice money.Money) error {
	query := `
		UPDATE products
		SET unit_price = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, unitPrice, id)
	if err != nil {
		return fmt.Errorf("updating price: %w", err)
	}

	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	return nil
}

// importLockKey serializes concurrent price list imports.
const importLockKey = 0x7469_6c6c_7901

type importTx struct {
	tx *sql.Tx
}

func (s *Store) BeginImport(ctx context.Context) (catalog.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", int64(importLockKey)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindExisting(ctx context.Context, skus []string) ([]*catalog.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}

	query := `SELECT ` + selectProductColumns + `
		FROM products
		WHERE deleted_at IS NULL AND sku = ANY($1)
		ORDER BY sku ASC`

	rows, err := itx.tx.QueryContext(ctx, query, skus)
	if err != nil {
		return nil, fmt.Errorf("finding existing products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating existing rows: %w", err)
	}

	return products, nil
}

func (itx *importTx) CreateProducts(ctx context.Context, products []*catalog.Product) error {
	query := `
		INSERT INTO products (sku, name, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	for _, p := range products {
		err := itx.tx.QueryRowContext(ctx, query,
			p.SKU,
			p.Name,
			p.UnitPrice,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating product: %w", err)
		}
	}

	return nil
}
