package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits order and items together", func(t *testing.T) {
		s := NewMemStore()
		var o Order

		err := s.WithTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.CreateOrder(ctx, &o))

			_, found, err := s.Get(context.Background(), o.ID)
			require.NoError(t, err)
			assert.False(t, found, "staged order must not be visible")

			it := Item{OrderID: o.ID, ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("0.99")}
			return s.CreateItem(ctx, &it)
		})
		require.NoError(t, err)

		got, found, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, got.Items, 1)
		assert.Equal(t, o.ID, got.Items[0].OrderID)
	})

	t.Run("failed tx leaves nothing behind", func(t *testing.T) {
		s := NewMemStore()
		var o Order
		boom := errors.New("boom")

		err := s.WithTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.CreateOrder(ctx, &o))
			it := Item{OrderID: o.ID, ProductID: 1, Quantity: 1}
			require.NoError(t, s.CreateItem(ctx, &it))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, found, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("nested tx joins outer", func(t *testing.T) {
		s := NewMemStore()
		var o Order

		err := s.WithTx(ctx, func(ctx context.Context) error {
			return s.WithTx(ctx, func(ctx context.Context) error {
				return s.CreateOrder(ctx, &o)
			})
		})
		require.NoError(t, err)

		_, found, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, found)
	})
}

func TestMemStore_IdempotencyKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	first := Order{IdempotencyKey: "k1"}
	require.NoError(t, s.CreateOrder(ctx, &first))

	got, found, err := s.FindByIdempotencyKey(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, got.ID)

	dup := Order{IdempotencyKey: "k1"}
	assert.ErrorIs(t, s.CreateOrder(ctx, &dup), ErrDuplicateKey)

	_, found, err = s.FindByIdempotencyKey(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)

	// orders without a key never clash
	a, b := Order{}, Order{}
	require.NoError(t, s.CreateOrder(ctx, &a))
	require.NoError(t, s.CreateOrder(ctx, &b))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMemStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	var o Order
	require.NoError(t, s.CreateOrder(ctx, &o))
	it := Item{OrderID: o.ID, ProductID: 1, Quantity: 1}
	require.NoError(t, s.CreateItem(ctx, &it))

	got, _, err := s.Get(ctx, o.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 100

	again, _, err := s.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Items[0].Quantity)
}
