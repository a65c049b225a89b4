package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, unitPrice money.Money) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx scopes a batch price list import to one database transaction, so
// duplicate detection and insertion see a consistent catalog.
type ImportTx interface {
	FindExisting(ctx context.Context, skus []string) ([]*Product, error)
	CreateProducts(ctx context.Context, products []*Product) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	SKU       string
	Name      string
	UnitPrice money.Money
}

type ListFilter struct {
	Search string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	p := &Product{
		SKU:       params.SKU,
		Name:      params.Name,
		UnitPrice: params.UnitPrice,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.GetProductBySKU(ctx, sku)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) UpdatePrice(ctx context.Context, id uuid.UUID, unitPrice money.Money) error {
	return s.repo.UpdatePrice(ctx, id, unitPrice)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, id)
}

type ImportResult struct {
	Imported  []*Product
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Product
}

// ImportBatch inserts the products of a parsed price list, reporting rows
// whose SKU already exists as conflicts instead of importing anything, so
// the caller can resolve them and resubmit.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	skus := make([]string, len(params))
	for i, p := range params {
		skus[i] = p.SKU
	}

	existing, err := itx.FindExisting(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("find existing products: %w", err)
	}

	lookup := make(map[string]*Product, len(existing))
	for _, p := range existing {
		lookup[p.SKU] = p
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		if found, ok := lookup[p.SKU]; ok {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: found})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	products := paramsToProducts(newParams)
	if err := itx.CreateProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("create products: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: products}, nil
}

// ApplyPriceUpdates resolves import conflicts by updating the price of
// products that already exist and creating the ones that do not.
func (s *Service) ApplyPriceUpdates(ctx context.Context, params []CreateParams) ([]*Product, error) {
	products := make([]*Product, 0, len(params))

	for _, p := range params {
		existing, err := s.repo.GetProductBySKU(ctx, p.SKU)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("looking up %s: %w", p.SKU, err)
			}

			created, err := s.Create(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("creating %s: %w", p.SKU, err)
			}

			products = append(products, created)

			continue
		}

		if err := s.repo.UpdatePrice(ctx, existing.ID, p.UnitPrice); err != nil {
			return nil, fmt.Errorf("updating price of %s: %w", p.SKU, err)
		}

		existing.UnitPrice = p.UnitPrice
		products = append(products, existing)
	}

	return products, nil
}

func paramsToProducts(params []CreateParams) []*Product {
	products := make([]*Product, len(params))
	for i, p := range params {
		products[i] = &Product{
			SKU:       p.SKU,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
		}
	}

	return products
}
