// internal/core/stores/orders_test.go
package stores_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/stores"
	"github.com/ammerola/dropdash/test/helpers"
	"github.com/ammerola/dropdash/test/mocks"
)

func newOrderStore(t *testing.T) (*stores.OrderStore, *mocks.MockBackendClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockBackend := mocks.NewMockBackendClient(ctrl)
	return stores.NewOrderStore(mockBackend, helpers.TestLogger()), mockBackend
}

func TestOrderStore_FetchOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("non_empty_cache_skips_network", func(t *testing.T) {
		store, mockBackend := newOrderStore(t)

		mockBackend.EXPECT().
			ListOrders(gomock.Any()).
			Times(1).
			Return([]domain.Order{helpers.CreateTestOrder()}, nil)

		first, err := store.FetchOrders(ctx, false)
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := store.FetchOrders(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("force_refresh_bypasses_cache", func(t *testing.T) {
		store, mockBackend := newOrderStore(t)

		mockBackend.EXPECT().
			ListOrders(gomock.Any()).
			Times(2).
			Return([]domain.Order{helpers.CreateTestOrder()}, nil)

		_, err := store.FetchOrders(ctx, false)
		require.NoError(t, err)
		_, err = store.FetchOrders(ctx, true)
		require.NoError(t, err)
	})

	t.Run("empty_cache_fetches_even_without_force", func(t *testing.T) {
		store, mockBackend := newOrderStore(t)

		mockBackend.EXPECT().
			ListOrders(gomock.Any()).
			Return([]domain.Order{}, nil)

		orders, err := store.FetchOrders(ctx, false)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("fetch_failure_returns_stale_cache_with_error", func(t *testing.T) {
		store, mockBackend := newOrderStore(t)

		mockBackend.EXPECT().
			ListOrders(gomock.Any()).
			Return([]domain.Order{helpers.CreateTestOrder()}, nil)
		_, err := store.FetchOrders(ctx, false)
		require.NoError(t, err)

		mockBackend.EXPECT().
			ListOrders(gomock.Any()).
			Return(nil, errors.New("bad gateway"))

		stale, err := store.FetchOrders(ctx, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch orders")
		assert.Len(t, stale, 1)
	})
}

func TestOrderStore_Mutations(t *testing.T) {
	t.Run("add_order_validates_and_prepends", func(t *testing.T) {
		store, _ := newOrderStore(t)

		first := helpers.CreateTestOrder(func(o *domain.Order) { o.ID = 1 })
		second := helpers.CreateTestOrder(func(o *domain.Order) { o.ID = 2 })
		require.NoError(t, store.AddOrder(first))
		require.NoError(t, store.AddOrder(second))

		orders := store.Orders()
		require.Len(t, orders, 2)
		assert.Equal(t, int64(2), orders[0].ID, "newest first")
	})

	t.Run("add_order_rejects_mismatched_total", func(t *testing.T) {
		store, _ := newOrderStore(t)

		bad := helpers.CreateTestOrder(func(o *domain.Order) {
			o.Total = decimal.NewFromInt(999)
		})
		err := store.AddOrder(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
		assert.Empty(t, store.Orders())
	})

	t.Run("update_merges_payment_without_clobbering_customer", func(t *testing.T) {
		store, _ := newOrderStore(t)
		require.NoError(t, store.AddOrder(helpers.CreateTestOrder()))

		store.UpdateOrder(domain.Order{
			ID: 1,
			Payment: &domain.Payment{
				Status: domain.PaymentPaid,
				Method: "zelle",
			},
		})

		orders := store.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, "Dana Cruz", orders[0].CustomerName)
		assert.Equal(t, "12 Pier Ave", orders[0].Address)
		require.NotNil(t, orders[0].Payment)
		assert.True(t, orders[0].Paid())
	})

	t.Run("update_replaces_provided_fields", func(t *testing.T) {
		store, _ := newOrderStore(t)
		require.NoError(t, store.AddOrder(helpers.CreateTestOrder()))

		store.UpdateOrder(domain.Order{ID: 1, Address: "99 Canal St"})

		orders := store.Orders()
		assert.Equal(t, "99 Canal St", orders[0].Address)
		assert.Equal(t, "Dana Cruz", orders[0].CustomerName)
	})

	t.Run("remove_order_filters_by_id", func(t *testing.T) {
		store, _ := newOrderStore(t)
		require.NoError(t, store.AddOrder(helpers.CreateTestOrder(func(o *domain.Order) { o.ID = 1 })))
		require.NoError(t, store.AddOrder(helpers.CreateTestOrder(func(o *domain.Order) { o.ID = 2 })))

		store.RemoveOrder(1)

		orders := store.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, int64(2), orders[0].ID)
	})
}
