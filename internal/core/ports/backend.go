// internal/core/ports/backend.go
package ports

import (
	"context"

	"github.com/ammerola/dropdash/internal/core/domain"
)

// BackendClient defines the outbound port to the shop's REST API, the system
// of record for everything the stores cache. Implemented by the HTTP adapter.
type BackendClient interface {
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	UpdateCollection(ctx context.Context, collection domain.Collection) (*domain.Collection, error)
	ListItems(ctx context.Context, collectionID int64) ([]domain.Item, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
