package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    catalog.CreateParams
		setupMock func(m *catalog.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: catalog.CreateParams{
				SKU:       "SOAP-250",
				Name:      "Soap 250g",
				UnitPrice: money.FromCents(250),
			},
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *catalog.Product) error {
						p.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "RepoError",
			params: catalog.CreateParams{
				SKU: "SOAP-250",
			},
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := catalog.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := catalog.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "SOAP-250", got.SKU)
		})
	}
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	itx := catalog.NewMockImportTx(ctrl)
	svc := catalog.NewService(repo)

	params := []catalog.CreateParams{
		{SKU: "SOAP-250", Name: "Soap 250g", UnitPrice: money.FromCents(250)},
		{SKU: "RICE-1KG", Name: "Rice 1kg", UnitPrice: money.FromCents(990)},
	}

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindExisting(gomock.Any(), []string{"SOAP-250", "RICE-1KG"}).Return(nil, nil)
	itx.EXPECT().CreateProducts(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 2)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	itx := catalog.NewMockImportTx(ctrl)
	svc := catalog.NewService(repo)

	params := []catalog.CreateParams{
		{SKU: "SOAP-250", Name: "Soap 250g", UnitPrice: money.FromCents(250)},
		{SKU: "RICE-1KG", Name: "Rice 1kg", UnitPrice: money.FromCents(990)},
	}

	existing := &catalog.Product{
		ID:        uuid.New(),
		SKU:       "SOAP-250",
		Name:      "Soap 250g",
		UnitPrice: money.FromCents(240),
	}

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindExisting(gomock.Any(), gomock.Any()).Return([]*catalog.Product{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	assert.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ApplyPriceUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	svc := catalog.NewService(repo)

	existing := &catalog.Product{
		ID:        uuid.New(),
		SKU:       "SOAP-250",
		Name:      "Soap 250g",
		UnitPrice: money.FromCents(240),
	}

	params := []catalog.CreateParams{
		{SKU: "SOAP-250", Name: "Soap 250g", UnitPrice: money.FromCents(250)},
		{SKU: "RICE-1KG", Name: "Rice 1kg", UnitPrice: money.FromCents(990)},
	}

	repo.EXPECT().GetProductBySKU(gomock.Any(), "SOAP-250").Return(existing, nil)
	repo.EXPECT().UpdatePrice(gomock.Any(), existing.ID, money.FromCents(250)).Return(nil)
	repo.EXPECT().GetProductBySKU(gomock.Any(), "RICE-1KG").Return(nil, catalog.ErrNotFound)
	repo.EXPECT().
		CreateProduct(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *catalog.Product) error {
			p.ID = uuid.New()
			return nil
		})

	products, err := svc.ApplyPriceUpdates(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[0].UnitPrice.Equal(money.FromCents(250)))
	assert.Equal(t, "RICE-1KG", products[1].SKU)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := catalog.NewMockRepository(ctrl)
	svc := catalog.NewService(repo)

	result, err := svc.ImportBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}
