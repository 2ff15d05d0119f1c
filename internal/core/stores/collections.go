// internal/core/stores/collections.go
package stores

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/ports"
)

// ReconcilerOptions bound the reconciliation worker. Reconciliation is
// processed one collection at a time; the limiter caps backend load.
type ReconcilerOptions struct {
	QueueSize         int
	RequestsPerSecond float64
	Burst             int
}

func (o *ReconcilerOptions) withDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 10
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
}

// CollectionStore holds the session's collection list and reconciles each
// collection's derived stock fields against its live item set. The backend
// persists the aggregates for fast listing, but the item table is canonical;
// the store self-heals drift lazily instead of relying on a backend trigger.
type CollectionStore struct {
	backend ports.BackendClient
	logger  *slog.Logger

	mu         sync.RWMutex
	records    []domain.Collection
	versions   *versionTable
	reconciled map[int64]bool

	queue   chan int64
	limiter *rate.Limiter
	running atomic.Bool
}

// Statically assert that *CollectionStore implements the CollectionStore port.
var _ ports.CollectionStore = (*CollectionStore)(nil)

// NewCollectionStore creates a new collection store
func NewCollectionStore(backend ports.BackendClient, opts ReconcilerOptions, logger *slog.Logger) *CollectionStore {
	opts.withDefaults()
	return &CollectionStore{
		backend:    backend,
		logger:     logger.With(slog.String("store", "collections")),
		versions:   newVersionTable(),
		reconciled: make(map[int64]bool),
		queue:      make(chan int64, opts.QueueSize),
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
	}
}

// Run drains the reconciliation queue until ctx is cancelled. While a worker
// is running, FetchCollections enqueues instead of reconciling inline.
func (s *CollectionStore) Run(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			if err := s.Reconcile(ctx, id); err != nil {
				s.logger.ErrorContext(ctx, "reconciliation failed",
					slog.Int64("collection_id", id),
					slog.String("error", err.Error()))
			}
		}
	}
}

// FetchCollections replaces the in-memory list with the backend's, Active
// collections first (stable otherwise), then schedules reconciliation for
// every fetched collection. On failure the previous list stays untouched:
// stale-but-available beats empty.
func (s *CollectionStore) FetchCollections(ctx context.Context) error {
	fetched, err := s.backend.ListCollections(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch collections",
			slog.String("error", err.Error()))
		return fmt.Errorf("fetch collections: %w", err)
	}

	sortActiveFirst(fetched)

	s.mu.Lock()
	s.records = fetched
	ids := make([]int64, len(fetched))
	for i := range fetched {
		ids[i] = fetched[i].ID
	}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "fetched collections", slog.Int("count", len(fetched)))

	if s.running.Load() {
		s.enqueue(ctx, ids...)
		return nil
	}
	s.ReconcileAll(ctx)
	return nil
}

// ReconcileAll reconciles every cached collection sequentially. One
// collection's failure is logged and does not abort the others.
func (s *CollectionStore) ReconcileAll(ctx context.Context) {
	s.mu.RLock()
	ids := make([]int64, len(s.records))
	for i := range s.records {
		ids[i] = s.records[i].ID
	}
	s.mu.RUnlock()

	for _, id := range ids {
		if err := s.Reconcile(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "reconciliation failed",
				slog.Int64("collection_id", id),
				slog.String("error", err.Error()))
		}
	}
}

// Reconcile recomputes one collection's qty/stock_qty/status from its live
// item set and pushes a backend update when anything drifted, or when this
// collection has not been reconciled yet this session. A repeat call with
// unchanged data performs zero writes.
func (s *CollectionStore) Reconcile(ctx context.Context, id int64) error {
	s.mu.RLock()
	_, ok := s.locateLocked(id)
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("collection %d not cached", id)
	}

	items, err := s.backend.ListItems(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch items for collection %d: %w", id, err)
	}
	agg := domain.ComputeAggregate(items)

	// Re-read under lock: a user mutation may have landed during the fetch.
	s.mu.Lock()
	idx, ok := s.locateLocked(id)
	if !ok {
		// removed while reconciling
		s.mu.Unlock()
		return nil
	}
	record := s.records[idx]
	first := !s.reconciled[id]
	s.reconciled[id] = true
	s.mu.Unlock()

	if record.Matches(agg) && !first {
		return nil
	}

	record.ApplyAggregate(agg)
	updated, err := s.backend.UpdateCollection(ctx, record)
	if err != nil {
		return fmt.Errorf("push aggregates for collection %d: %w", id, err)
	}

	s.mu.Lock()
	if idx, ok := s.locateLocked(id); ok {
		s.records[idx] = *updated
	}
	s.mu.Unlock()
	s.versions.bump(collectionKey(id))

	s.logger.DebugContext(ctx, "reconciled collection",
		slog.Int64("collection_id", id),
		slog.Int("qty", agg.Qty),
		slog.Int("stock_qty", agg.StockQty),
		slog.String("status", string(agg.Status)))
	return nil
}

// Collections returns a copy of the cached list
func (s *CollectionStore) Collections() []domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Collection, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns a cached collection by id
func (s *CollectionStore) Get(id int64) (domain.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx, ok := s.locateLocked(id); ok {
		return s.records[idx], true
	}
	return domain.Collection{}, false
}

// Add inserts a collection at the front of the list (newest first) and
// initializes its version to 1. No network call: the caller already created
// the record server-side and passes back the canonical copy.
func (s *CollectionStore) Add(collection domain.Collection) {
	s.mu.Lock()
	s.records = append([]domain.Collection{collection}, s.records...)
	s.mu.Unlock()
	s.versions.set(collectionKey(collection.ID), 1)
}

// Update replaces the cached record by id with the caller's full edited copy
// and bumps its version. A record still at version 0 has never been touched
// this session; it is reconciled immediately so a fresh collection never
// shows stale derived fields.
func (s *CollectionStore) Update(ctx context.Context, collection domain.Collection) error {
	key := collectionKey(collection.ID)
	first := s.versions.get(key) == 0

	s.mu.Lock()
	idx, ok := s.locateLocked(collection.ID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("collection %d not cached", collection.ID)
	}
	s.records[idx] = collection
	s.mu.Unlock()
	s.versions.bump(key)

	if first {
		return s.Reconcile(ctx, collection.ID)
	}
	return nil
}

// Remove deletes the record and its version entry. Callers are responsible
// for invalidating the ItemStore cache for this collection.
func (s *CollectionStore) Remove(id int64) {
	s.mu.Lock()
	if idx, ok := s.locateLocked(id); ok {
		s.records = append(s.records[:idx], s.records[idx+1:]...)
	}
	delete(s.reconciled, id)
	s.mu.Unlock()
	s.versions.drop(collectionKey(id))
}

// Version returns the session version counter for a collection
func (s *CollectionStore) Version(id int64) uint64 {
	return s.versions.get(collectionKey(id))
}

func (s *CollectionStore) enqueue(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		select {
		case s.queue <- id:
		default:
			// Queue full: skip, the next fetch schedules it again.
			s.logger.WarnContext(ctx, "reconcile queue full, skipping",
				slog.Int64("collection_id", id))
		}
	}
}

// locateLocked finds a record index by id; callers hold s.mu.
func (s *CollectionStore) locateLocked(id int64) (int, bool) {
	for i := range s.records {
		if s.records[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func sortActiveFirst(collections []domain.Collection) {
	sort.SliceStable(collections, func(a, b int) bool {
		return collections[a].Status == domain.CollectionActive &&
			collections[b].Status != domain.CollectionActive
	})
}
