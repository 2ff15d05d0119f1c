// internal/core/stores/items.go
package stores

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/ports"
)

// ItemStore caches items keyed by owning collection, available items first.
// It knows nothing about collection aggregates; views trigger collection
// reconciliation after item mutations.
type ItemStore struct {
	backend ports.BackendClient
	logger  *slog.Logger

	mu           sync.RWMutex
	byCollection map[int64][]domain.Item
	fetchedAt    map[int64]uint64

	versions *versionTable
	flight   singleflight.Group
}

// Statically assert that *ItemStore implements the ItemStore port.
var _ ports.ItemStore = (*ItemStore)(nil)

// NewItemStore creates a new item store
func NewItemStore(backend ports.BackendClient, logger *slog.Logger) *ItemStore {
	return &ItemStore{
		backend:      backend,
		logger:       logger.With(slog.String("store", "items")),
		byCollection: make(map[int64][]domain.Item),
		fetchedAt:    make(map[int64]uint64),
		versions:     newVersionTable(),
	}
}

// FetchItems returns the cached list when it is non-empty and its version has
// not moved since the last completed fetch; repeated mounts then cost no
// network call. Otherwise it fetches, sorts available-first and replaces the
// cache. Concurrent fetches for the same collection share one backend call,
// which closes the check-then-fetch-then-write race. On failure the previous
// cache is returned alongside the error.
func (s *ItemStore) FetchItems(ctx context.Context, collectionID int64) ([]domain.Item, error) {
	key := itemsKey(collectionID)

	s.mu.RLock()
	cached := cloneItems(s.byCollection[collectionID])
	last, fetched := s.fetchedAt[collectionID]
	s.mu.RUnlock()

	if fetched && len(cached) > 0 && last == s.versions.get(key) {
		return cached, nil
	}

	result, err, _ := s.flight.Do(key, func() (interface{}, error) {
		items, err := s.backend.ListItems(ctx, collectionID)
		if err != nil {
			return nil, err
		}
		domain.SortAvailableFirst(items)

		version := s.versions.bump(key)
		s.mu.Lock()
		s.byCollection[collectionID] = items
		s.fetchedAt[collectionID] = version
		s.mu.Unlock()

		s.logger.DebugContext(ctx, "fetched items",
			slog.Int64("collection_id", collectionID),
			slog.Int("count", len(items)))
		return cloneItems(items), nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch items",
			slog.Int64("collection_id", collectionID),
			slog.String("error", err.Error()))
		return cached, fmt.Errorf("fetch items for collection %d: %w", collectionID, err)
	}
	return result.([]domain.Item), nil
}

// Items returns a copy of the cached list for a collection
func (s *ItemStore) Items(collectionID int64) []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.byCollection[collectionID])
}

// AddItem prepends the item and re-applies the availability order, so a new
// available item lands first within the available group. Bumps the version.
func (s *ItemStore) AddItem(collectionID int64, item domain.Item) {
	s.mu.Lock()
	list := append([]domain.Item{item}, s.byCollection[collectionID]...)
	domain.SortAvailableFirst(list)
	s.byCollection[collectionID] = list
	s.mu.Unlock()
	s.versions.bump(itemsKey(collectionID))
}

// UpdateItem replaces the item by id and re-applies the availability order,
// so a status flip moves the item into the right group immediately. Bumps
// the version.
func (s *ItemStore) UpdateItem(collectionID int64, item domain.Item) {
	s.mu.Lock()
	list := s.byCollection[collectionID]
	for i := range list {
		if list[i].ID == item.ID {
			list[i] = item
			break
		}
	}
	domain.SortAvailableFirst(list)
	s.mu.Unlock()
	s.versions.bump(itemsKey(collectionID))
}

// RemoveItem filters the item out and bumps the version
func (s *ItemStore) RemoveItem(collectionID, itemID int64) {
	s.mu.Lock()
	list := s.byCollection[collectionID]
	out := list[:0]
	for i := range list {
		if list[i].ID != itemID {
			out = append(out, list[i])
		}
	}
	s.byCollection[collectionID] = out
	s.mu.Unlock()
	s.versions.bump(itemsKey(collectionID))
}

// Invalidate drops the cached items and version entry for a collection
func (s *ItemStore) Invalidate(collectionID int64) {
	s.mu.Lock()
	delete(s.byCollection, collectionID)
	delete(s.fetchedAt, collectionID)
	s.mu.Unlock()
	s.versions.drop(itemsKey(collectionID))
}

// Version returns the session version counter for a collection's item cache
func (s *ItemStore) Version(collectionID int64) uint64 {
	return s.versions.get(itemsKey(collectionID))
}

func cloneItems(items []domain.Item) []domain.Item {
	if items == nil {
		return nil
	}
	out := make([]domain.Item, len(items))
	copy(out, items)
	return out
}
