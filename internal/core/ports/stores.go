// internal/core/ports/stores.go
package ports

import (
	"context"

	"github.com/ammerola/dropdash/internal/core/domain"
)

// CollectionStore holds the session's collection list and keeps each
// collection's derived stock fields consistent with its live item set.
// Instances are dependency-injected; there is no process-wide singleton.
type CollectionStore interface {
	// FetchCollections replaces the in-memory list with the backend's,
	// Active collections first, and schedules reconciliation for every
	// fetched collection. On failure the previous list is left untouched.
	FetchCollections(ctx context.Context) error
	// Reconcile recomputes one collection's aggregates from its items and
	// pushes a backend update when they drifted (or on the first pass of
	// the session). Idempotent: a repeat call with unchanged data writes
	// nothing.
	Reconcile(ctx context.Context, id int64) error
	// ReconcileAll reconciles every cached collection sequentially.
	// Failures are logged per collection and never abort the pass.
	ReconcileAll(ctx context.Context)
	Collections() []domain.Collection
	Get(id int64) (domain.Collection, bool)
	Add(collection domain.Collection)
	Update(ctx context.Context, collection domain.Collection) error
	Remove(id int64)
	Version(id int64) uint64
}

// ItemStore caches items keyed by owning collection, available items first.
// It never calls the CollectionStore; views invoke collection reconciliation
// after item mutations.
type ItemStore interface {
	// FetchItems returns the cached list when it is non-empty and its
	// version has not moved since the last completed fetch; otherwise it
	// hits the backend. Concurrent fetches for the same collection share
	// a single backend call.
	FetchItems(ctx context.Context, collectionID int64) ([]domain.Item, error)
	Items(collectionID int64) []domain.Item
	AddItem(collectionID int64, item domain.Item)
	UpdateItem(collectionID int64, item domain.Item)
	RemoveItem(collectionID, itemID int64)
	// Invalidate drops the cached items for a collection, e.g. after the
	// collection itself was deleted.
	Invalidate(collectionID int64)
	Version(collectionID int64) uint64
}

// OrderStore caches the order list with simple force-refresh control
type OrderStore interface {
	// FetchOrders is a pure cache hit when the cache is non-empty and
	// force is false; otherwise it fetches and replaces the full list.
	FetchOrders(ctx context.Context, force bool) ([]domain.Order, error)
	Orders() []domain.Order
	AddOrder(order domain.Order) error
	UpdateOrder(order domain.Order)
	RemoveOrder(id int64)
}
