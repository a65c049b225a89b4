package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestService_Checkout(t *testing.T) {
	type testCase struct {
		name      string
		method    cart.Method
		legs      []cart.TenderLeg
		setupMock func(m *cart.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "CashSuccess",
			method: cart.MethodCash,
			legs: []cart.TenderLeg{
				{Method: cart.MethodCash, Amount: money.FromCents(100000)},
			},
			setupMock: func(m *cart.MockRepository) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name:   "InsufficientTenderSkipsRepo",
			method: cart.MethodCash,
			legs: []cart.TenderLeg{
				{Method: cart.MethodCash, Amount: money.FromCents(100)},
			},
			wantErr: cart.ErrInsufficientTender,
		},
		{
			name:   "RepoError",
			method: cart.MethodCard,
			setupMock: func(m *cart.MockRepository) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := cart.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			c := cartWithTotal(t, 96328)
			svc := cart.NewService(repo, fixedNow)

			sale, err := svc.Checkout(context.Background(), c, tt.method, tt.legs)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, sale)
				// Any failure leaves the cart untouched for a retry.
				assert.Len(t, c.Lines(), 1)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, sale.ID)
			assert.Equal(t, "963.28", sale.Total.String())
			assert.Equal(t, fixedNow(), sale.CreatedAt)
			assert.True(t, c.IsEmpty())
		})
	}
}

func TestService_Checkout_SnapshotSurvivesClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cart.NewMockRepository(ctrl)
	repo.EXPECT().CreateSale(gomock.Any(), gomock.Any()).Return(nil)

	c := cart.New(decimal.NewFromInt(16))
	_, err := c.AddItem(item("Soap", 250), 2)
	require.NoError(t, err)

	svc := cart.NewService(repo, nil)

	sale, err := svc.Checkout(context.Background(), c, cart.MethodCard, nil)
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.Len(t, sale.Items, 1)
	assert.Equal(t, int64(2), sale.Items[0].Quantity)
}

func TestService_Checkout_EmptyCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := cart.NewService(cart.NewMockRepository(ctrl), fixedNow)

	_, err := svc.Checkout(context.Background(), cart.New(decimal.Zero), cart.MethodCash, nil)
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}
