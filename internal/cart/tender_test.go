package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

// cartWithTotal builds a single-line, zero-tax cart totaling the given cents.
func cartWithTotal(t *testing.T, totalCents int64) *cart.Cart {
	t.Helper()

	c := cart.New(decimal.Zero)
	_, err := c.AddItem(item("Bulk order", totalCents), 1)
	require.NoError(t, err)

	return c
}

func TestValidateTender_Cash(t *testing.T) {
	c := cartWithTotal(t, 96328) // 963.28

	change, err := c.ValidateTender(cart.MethodCash, []cart.TenderLeg{
		{Method: cart.MethodCash, Amount: money.FromCents(100000)},
	})
	require.NoError(t, err)
	assert.Equal(t, "36.72", change.String())

	_, err = c.ValidateTender(cart.MethodCash, []cart.TenderLeg{
		{Method: cart.MethodCash, Amount: money.FromCents(90000)},
	})
	assert.ErrorIs(t, err, cart.ErrInsufficientTender)
}

func TestValidateTender_Split(t *testing.T) {
	type testCase struct {
		name       string
		cashCents  int64
		otherCents int64
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "ExactSplit",
			cashCents:  50000, // 500.00
			otherCents: 46328, // 463.28
		},
		{
			name:       "Mismatch",
			cashCents:  50000,
			otherCents: 40000, // short by 63.28
			wantErr:    cart.ErrTenderMismatch,
		},
		{
			name:       "SubCentDriftTolerated",
			cashCents:  50000,
			otherCents: 46328, // plus drift added below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cartWithTotal(t, 96328)

			other := money.FromCents(tt.otherCents)
			if tt.name == "SubCentDriftTolerated" {
				other = other.Add(money.FromFloat(0.004))
			}

			change, err := c.ValidateTender(cart.MethodSplit, []cart.TenderLeg{
				{Method: cart.MethodCash, Amount: money.FromCents(tt.cashCents)},
				{Method: cart.MethodMobile, Amount: other},
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, change.IsZero())
		})
	}
}

func TestValidateTender_NonCash(t *testing.T) {
	c := cartWithTotal(t, 96328)

	for _, method := range []cart.Method{cart.MethodCard, cart.MethodMobile} {
		change, err := c.ValidateTender(method, nil)
		require.NoError(t, err)
		assert.True(t, change.IsZero())
	}
}

func TestValidateTender_UnknownMethod(t *testing.T) {
	c := cartWithTotal(t, 100)

	_, err := c.ValidateTender(cart.Method("barter"), nil)
	assert.ErrorIs(t, err, cart.ErrUnknownMethod)
}
