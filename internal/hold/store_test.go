package hold_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/hold"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

func testCart(t *testing.T) *cart.Cart {
	t.Helper()

	c := cart.New(decimal.NewFromInt(16))
	_, err := c.AddItem(cart.ItemParams{
		Name:      "Soap",
		UnitPrice: money.FromCents(250),
	}, 2)
	require.NoError(t, err)

	return c
}

func TestStore_HoldRestoreRoundTrip(t *testing.T) {
	s := hold.NewStore(nil)
	c := testCart(t)
	wantTotal := c.Totals().Total

	id, err := s.Hold(c)
	require.NoError(t, err)

	// The register clears and reuses the active cart; the snapshot must not
	// see any of it.
	c.Clear()

	ht, err := s.Restore(id)
	require.NoError(t, err)
	assert.Len(t, ht.Snapshot.Lines(), 1)
	assert.Equal(t, int64(2), ht.Snapshot.Lines()[0].Quantity)
	assert.True(t, ht.Total.Equal(wantTotal))
	assert.True(t, ht.Snapshot.Totals().Total.Equal(wantTotal))

	// Restore is destructive.
	_, err = s.Restore(id)
	assert.ErrorIs(t, err, hold.ErrNotFound)
}

func TestStore_HoldEmptyCart(t *testing.T) {
	s := hold.NewStore(nil)

	_, err := s.Hold(cart.New(decimal.Zero))
	assert.ErrorIs(t, err, hold.ErrEmptyCart)
}

func TestStore_Discard(t *testing.T) {
	s := hold.NewStore(nil)

	id, err := s.Hold(testCart(t))
	require.NoError(t, err)

	require.NoError(t, s.Discard(id))
	assert.ErrorIs(t, s.Discard(id), hold.ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStore_ListOldestFirst(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	current := base

	s := hold.NewStore(func() time.Time {
		current = current.Add(time.Minute)
		return current
	})

	var ids []string
	for range 3 {
		id, err := s.Hold(testCart(t))
		require.NoError(t, err)

		ids = append(ids, id.String())
	}

	var got []string
	for ht := range s.List() {
		got = append(got, ht.ID.String())
	}

	assert.Equal(t, ids, got)

	// The sequence is restartable and non-destructive.
	count := 0
	for range s.List() {
		count++
	}

	assert.Equal(t, 3, count)
	assert.Equal(t, 3, s.Len())
}

func TestStore_ConcurrentRestoreSingleWinner(t *testing.T) {
	s := hold.NewStore(nil)

	id, err := s.Hold(testCart(t))
	require.NoError(t, err)

	const cashiers = 16

	var (
		wg   sync.WaitGroup
		wins int64
		mu   sync.Mutex
	)

	for range cashiers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := s.Restore(id); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, int64(1), wins)
}
