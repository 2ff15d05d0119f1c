// internal/core/stores/orders.go
package stores

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/ports"
)

// OrderStore caches the order list. Unlike the other stores its cache check
// is a pure existence test with a force-refresh escape hatch; the version
// counter still moves on every mutation.
type OrderStore struct {
	backend ports.BackendClient
	logger  *slog.Logger

	mu       sync.RWMutex
	orders   []domain.Order
	versions *versionTable
}

// Statically assert that *OrderStore implements the OrderStore port.
var _ ports.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new order store
func NewOrderStore(backend ports.BackendClient, logger *slog.Logger) *OrderStore {
	return &OrderStore{
		backend:  backend,
		logger:   logger.With(slog.String("store", "orders")),
		versions: newVersionTable(),
	}
}

// FetchOrders is a pure cache hit when the cache is non-empty and force is
// false. Otherwise it fetches and replaces the full list; on failure the
// previous list is returned alongside the error.
func (s *OrderStore) FetchOrders(ctx context.Context, force bool) ([]domain.Order, error) {
	s.mu.RLock()
	cached := cloneOrders(s.orders)
	s.mu.RUnlock()

	if !force && len(cached) > 0 {
		return cached, nil
	}

	fetched, err := s.backend.ListOrders(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch orders",
			slog.String("error", err.Error()))
		return cached, fmt.Errorf("fetch orders: %w", err)
	}

	s.mu.Lock()
	s.orders = fetched
	s.mu.Unlock()
	s.versions.bump(ordersKey)

	s.logger.DebugContext(ctx, "fetched orders", slog.Int("count", len(fetched)))
	return cloneOrders(fetched), nil
}

// Orders returns a copy of the cached list
func (s *OrderStore) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

// AddOrder validates the order and prepends it to the cached list. The total
// must agree with the sum of the line snapshots taken at checkout.
func (s *OrderStore) AddOrder(order domain.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	s.orders = append([]domain.Order{order}, s.orders...)
	s.mu.Unlock()
	s.versions.bump(ordersKey)
	return nil
}

// UpdateOrder merges the non-zero fields of the given order into the cached
// record by id. Attaching a payment does not clobber customer fields.
func (s *OrderStore) UpdateOrder(order domain.Order) {
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			mergeOrder(&s.orders[i], order)
			break
		}
	}
	s.mu.Unlock()
	s.versions.bump(ordersKey)
}

// RemoveOrder filters the order out of the cached list
func (s *OrderStore) RemoveOrder(id int64) {
	s.mu.Lock()
	out := s.orders[:0]
	for i := range s.orders {
		if s.orders[i].ID != id {
			out = append(out, s.orders[i])
		}
	}
	s.orders = out
	s.mu.Unlock()
	s.versions.bump(ordersKey)
}

func mergeOrder(dst *domain.Order, src domain.Order) {
	if src.CustomerName != "" {
		dst.CustomerName = src.CustomerName
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Lines != nil {
		dst.Lines = src.Lines
	}
	if !src.Total.IsZero() {
		dst.Total = src.Total
	}
	if src.Payment != nil {
		dst.Payment = src.Payment
	}
}

func cloneOrders(orders []domain.Order) []domain.Order {
	if orders == nil {
		return nil
	}
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out
}
