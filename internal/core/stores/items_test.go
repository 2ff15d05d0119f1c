// internal/core/stores/items_test.go
package stores_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/stores"
	"github.com/ammerola/dropdash/test/helpers"
	"github.com/ammerola/dropdash/test/mocks"
)

func newItemStore(t *testing.T) (*stores.ItemStore, *mocks.MockBackendClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockBackend := mocks.NewMockBackendClient(ctrl)
	return stores.NewItemStore(mockBackend, helpers.TestLogger()), mockBackend
}

func TestItemStore_FetchItems(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat_fetch_with_unchanged_version_uses_cache", func(t *testing.T) {
		store, mockBackend := newItemStore(t)

		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Times(1).
			Return(helpers.CreateTestItems(7, 2, 1), nil)

		first, err := store.FetchItems(ctx, 7)
		require.NoError(t, err)
		require.Len(t, first, 3)

		second, err := store.FetchItems(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("sorts_available_first", func(t *testing.T) {
		store, mockBackend := newItemStore(t)

		unsorted := []domain.Item{
			{ID: 1, CollectionID: 7, Status: domain.ItemSold},
			{ID: 2, CollectionID: 7, Status: domain.ItemAvailable},
			{ID: 3, CollectionID: 7, Status: domain.ItemTaken},
			{ID: 4, CollectionID: 7, Status: domain.ItemAvailable},
		}
		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Return(unsorted, nil)

		items, err := store.FetchItems(ctx, 7)
		require.NoError(t, err)

		ids := make([]int64, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		assert.Equal(t, []int64{2, 4, 1, 3}, ids)
	})

	t.Run("version_bump_forces_refetch", func(t *testing.T) {
		store, mockBackend := newItemStore(t)

		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Times(2).
			Return(helpers.CreateTestItems(7, 2, 0), nil)

		_, err := store.FetchItems(ctx, 7)
		require.NoError(t, err)

		store.AddItem(7, domain.Item{ID: 9, CollectionID: 7, Status: domain.ItemAvailable})

		_, err = store.FetchItems(ctx, 7)
		require.NoError(t, err)
	})

	t.Run("empty_cache_always_refetches", func(t *testing.T) {
		store, mockBackend := newItemStore(t)

		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Times(2).
			Return([]domain.Item{}, nil)

		_, err := store.FetchItems(ctx, 7)
		require.NoError(t, err)
		_, err = store.FetchItems(ctx, 7)
		require.NoError(t, err)
	})

	t.Run("fetch_failure_returns_stale_cache_with_error", func(t *testing.T) {
		store, mockBackend := newItemStore(t)

		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Return(helpers.CreateTestItems(7, 2, 0), nil)
		_, err := store.FetchItems(ctx, 7)
		require.NoError(t, err)

		store.AddItem(7, domain.Item{ID: 9, CollectionID: 7, Status: domain.ItemAvailable})

		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Return(nil, errors.New("gateway timeout"))

		stale, err := store.FetchItems(ctx, 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch items for collection 7")
		assert.Len(t, stale, 3, "previous cache survives a failed refresh")
	})

	t.Run("concurrent_fetches_share_one_backend_call", func(t *testing.T) {
		store, mockBackend := newItemStore(t)

		release := make(chan struct{})
		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Times(1).
			DoAndReturn(func(context.Context, int64) ([]domain.Item, error) {
				<-release
				return helpers.CreateTestItems(7, 2, 0), nil
			})

		var wg sync.WaitGroup
		results := make([][]domain.Item, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				items, err := store.FetchItems(ctx, 7)
				assert.NoError(t, err)
				results[i] = items
			}(i)
		}

		// Let both callers join the in-flight fetch before it completes.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, results[0], results[1])
		assert.Len(t, store.Items(7), 2)
	})
}

func TestItemStore_Mutations(t *testing.T) {
	seed := func(t *testing.T) (*stores.ItemStore, *mocks.MockBackendClient) {
		t.Helper()
		store, mockBackend := newItemStore(t)
		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Return(helpers.CreateTestItems(7, 1, 1), nil)
		_, err := store.FetchItems(context.Background(), 7)
		require.NoError(t, err)
		return store, mockBackend
	}

	t.Run("add_item_keeps_availability_order_and_bumps_version", func(t *testing.T) {
		store, _ := seed(t)
		before := store.Version(7)

		store.AddItem(7, domain.Item{ID: 9, CollectionID: 7, Status: domain.ItemAvailable})

		items := store.Items(7)
		require.Len(t, items, 3)
		assert.Equal(t, int64(9), items[0].ID, "new available item lands first")
		assert.Equal(t, domain.ItemTaken, items[2].Status)
		assert.Equal(t, before+1, store.Version(7))
	})

	t.Run("status_flip_resorts_immediately", func(t *testing.T) {
		store, _ := seed(t)

		// Item 1 is the available one from the seed; selling it moves it
		// behind the remaining available items.
		store.AddItem(7, domain.Item{ID: 9, CollectionID: 7, Status: domain.ItemAvailable})
		store.UpdateItem(7, domain.Item{ID: 1, CollectionID: 7, Status: domain.ItemSold})

		items := store.Items(7)
		require.Len(t, items, 3)
		assert.Equal(t, int64(9), items[0].ID)
		assert.False(t, items[1].Available())
		assert.False(t, items[2].Available())
	})

	t.Run("remove_item_filters_and_bumps_version", func(t *testing.T) {
		store, _ := seed(t)
		before := store.Version(7)

		store.RemoveItem(7, 1)

		items := store.Items(7)
		require.Len(t, items, 1)
		assert.Equal(t, int64(2), items[0].ID)
		assert.Equal(t, before+1, store.Version(7))
	})

	t.Run("invalidate_drops_cache_and_version", func(t *testing.T) {
		store, mockBackend := seed(t)

		store.Invalidate(7)
		assert.Empty(t, store.Items(7))
		assert.Equal(t, uint64(0), store.Version(7))

		// Next fetch goes back to the network.
		mockBackend.EXPECT().
			ListItems(gomock.Any(), int64(7)).
			Return(helpers.CreateTestItems(7, 2, 0), nil)
		items, err := store.FetchItems(context.Background(), 7)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}
