package cart_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

func item(name string, unitCents int64) cart.ItemParams {
	return cart.ItemParams{
		ProductID: uuid.New(),
		Name:      name,
		UnitPrice: money.FromCents(unitCents),
	}
}

func TestCart_AddItem(t *testing.T) {
	c := cart.New(decimal.Zero)

	soap := item("Soap", 250)

	line, err := c.AddItem(soap, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), line.Quantity)

	// Same product merges into the existing line.
	merged, err := c.AddItem(soap, 3)
	require.NoError(t, err)
	assert.Equal(t, line.ID, merged.ID)
	assert.Equal(t, int64(5), merged.Quantity)
	assert.Len(t, c.Lines(), 1)

	// A different product gets its own line.
	_, err = c.AddItem(item("Rice", 990), 1)
	require.NoError(t, err)
	assert.Len(t, c.Lines(), 2)
}

func TestCart_AddItem_InvalidQuantity(t *testing.T) {
	c := cart.New(decimal.Zero)

	for _, qty := range []int64{0, -1} {
		_, err := c.AddItem(item("Soap", 250), qty)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	}

	assert.True(t, c.IsEmpty())
}

func TestCart_SetQuantity(t *testing.T) {
	c := cart.New(decimal.Zero)
	line, err := c.AddItem(item("Soap", 250), 2)
	require.NoError(t, err)

	require.NoError(t, c.SetQuantity(line.ID, 7))
	assert.Equal(t, int64(7), c.Lines()[0].Quantity)

	// Zero removes the line.
	require.NoError(t, c.SetQuantity(line.ID, 0))
	assert.True(t, c.IsEmpty())

	assert.ErrorIs(t, c.SetQuantity(line.ID, 1), cart.ErrLineNotFound)

	line, err = c.AddItem(item("Soap", 250), 1)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetQuantity(line.ID, -2), cart.ErrInvalidQuantity)
}

func TestCart_SetDiscount(t *testing.T) {
	c := cart.New(decimal.Zero)
	line, err := c.AddItem(item("Soap", 250), 2) // gross 5.00
	require.NoError(t, err)

	require.NoError(t, c.SetDiscount(line.ID, money.FromCents(100)))
	assert.Equal(t, int64(400), c.Totals().Subtotal.Cents())

	assert.ErrorIs(t, c.SetDiscount(line.ID, money.FromCents(-1)), cart.ErrInvalidDiscount)
	assert.ErrorIs(t, c.SetDiscount(line.ID, money.FromCents(501)), cart.ErrInvalidDiscount)
	assert.ErrorIs(t, c.SetDiscount(uuid.New(), money.FromCents(50)), cart.ErrLineNotFound)
}

func TestCart_Totals(t *testing.T) {
	c := cart.New(decimal.NewFromInt(16))

	lineA, err := c.AddItem(item("Flour", 1250), 4) // 50.00
	require.NoError(t, err)
	_, err = c.AddItem(item("Sugar", 990), 3) // 29.70
	require.NoError(t, err)

	require.NoError(t, c.SetDiscount(lineA.ID, money.FromCents(500))) // -5.00

	totals := c.Totals()
	assert.Equal(t, "74.70", totals.Subtotal.String())
	assert.Equal(t, "11.95", totals.Tax.String()) // 74.70 * 16% = 11.952 -> 11.95
	assert.Equal(t, "86.65", totals.Total.String())

	// total == subtotal + tax holds regardless of call order.
	assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax)))
}

func TestCart_Totals_OrderIndependent(t *testing.T) {
	soap := item("Soap", 250)
	rice := item("Rice", 990)

	a := cart.New(decimal.NewFromInt(16))
	_, err := a.AddItem(soap, 2)
	require.NoError(t, err)
	_, err = a.AddItem(rice, 1)
	require.NoError(t, err)

	b := cart.New(decimal.NewFromInt(16))
	_, err = b.AddItem(rice, 1)
	require.NoError(t, err)
	line, err := b.AddItem(soap, 1)
	require.NoError(t, err)
	require.NoError(t, b.SetQuantity(line.ID, 2))

	assert.True(t, a.Totals().Total.Equal(b.Totals().Total))
	assert.True(t, a.Totals().Subtotal.Equal(b.Totals().Subtotal))
}

func TestCart_Snapshot_IsIndependent(t *testing.T) {
	c := cart.New(decimal.NewFromInt(16))
	line, err := c.AddItem(item("Soap", 250), 2)
	require.NoError(t, err)

	snap := c.Snapshot()

	require.NoError(t, c.SetQuantity(line.ID, 10))
	c.Clear()

	assert.Len(t, snap.Lines(), 1)
	assert.Equal(t, int64(2), snap.Lines()[0].Quantity)
	assert.Equal(t, "5.80", snap.Totals().Total.String())
}
