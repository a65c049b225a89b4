package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tilly/internal/money"
)

func TestArithmeticStaysExact(t *testing.T) {
	// 0.1 + 0.2 is the canonical float trap; repeated cents must stay exact.
	sum := money.Zero()
	for range 10 {
		sum = sum.Add(money.FromCents(10)) // 0.10 each
	}

	assert.True(t, sum.Equal(money.FromCents(100)))
	assert.Equal(t, "1.00", sum.String())
}

func TestFromString(t *testing.T) {
	m, err := money.FromString("963.28")
	require.NoError(t, err)
	assert.Equal(t, int64(96328), m.Cents())

	_, err = money.FromString("not-a-number")
	assert.Error(t, err)
}

func TestIsEffectivelyZero(t *testing.T) {
	tests := []struct {
		name   string
		amount money.Money
		want   bool
	}{
		{"ExactZero", money.Zero(), true},
		{"SubCentResidue", money.FromFloat(0.004), true},
		{"NegativeResidue", money.FromFloat(-0.009), true},
		{"OneCent", money.FromCents(1), false},
		{"NegativeCent", money.FromCents(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.IsEffectivelyZero())
		})
	}
}

func TestPercent(t *testing.T) {
	subtotal := money.FromCents(83000) // 830.00
	tax := subtotal.Percent(decimal.NewFromInt(16))

	assert.Equal(t, "132.80", tax.RoundCents().String())
}

func TestPercentRoundsHalfUp(t *testing.T) {
	// 10.05 * 5% = 0.5025 -> 0.50, 10.10 * 7.5% = 0.7575 -> 0.76
	assert.Equal(t, "0.50", money.FromCents(1005).Percent(decimal.NewFromInt(5)).RoundCents().String())
	assert.Equal(t, "0.76", money.FromCents(1010).Percent(decimal.NewFromFloat(7.5)).RoundCents().String())
}

func TestClamp(t *testing.T) {
	low := money.Zero()
	high := money.FromCents(10000)

	assert.True(t, money.FromCents(-5).Clamp(low, high).IsZero())
	assert.True(t, money.FromCents(20000).Clamp(low, high).Equal(high))
	assert.True(t, money.FromCents(500).Clamp(low, high).Equal(money.FromCents(500)))
}

func TestDivInt(t *testing.T) {
	third := money.FromCents(100).DivInt(3)

	// Full precision is kept; three parts sum back to the original.
	total := third.Add(third).Add(third)
	assert.True(t, total.Sub(money.FromCents(100)).IsEffectivelyZero())
}

func TestFormat(t *testing.T) {
	m := money.FromCents(96328)
	assert.Equal(t, "€963.28", m.Format("EUR"))
}
