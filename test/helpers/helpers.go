// test/helpers/helpers.go
package helpers

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/dropdash/internal/core/domain"
)

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// CreateTestCollection creates a collection with sensible defaults,
// optionally mutated by override functions.
func CreateTestCollection(overrides ...func(*domain.Collection)) domain.Collection {
	c := domain.Collection{
		ID:          1,
		Name:        "Summer Drop 24",
		ReleaseDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Capital:     decimal.NewFromInt(1200),
		Qty:         2,
		StockQty:    2,
		Status:      domain.CollectionActive,
		TotalSales:  decimal.Zero,
	}
	for _, override := range overrides {
		override(&c)
	}
	return c
}

// CreateTestItems creates available+taken items for a collection, available
// first, with ids assigned sequentially from 1.
func CreateTestItems(collectionID int64, available, taken int) []domain.Item {
	items := make([]domain.Item, 0, available+taken)
	id := int64(1)
	for i := 0; i < available; i++ {
		items = append(items, domain.Item{
			ID:           id,
			CollectionID: collectionID,
			Name:         "Tee",
			Price:        decimal.NewFromInt(35),
			Status:       domain.ItemAvailable,
		})
		id++
	}
	for i := 0; i < taken; i++ {
		items = append(items, domain.Item{
			ID:           id,
			CollectionID: collectionID,
			Name:         "Tee",
			Price:        decimal.NewFromInt(35),
			Status:       domain.ItemTaken,
		})
		id++
	}
	return items
}

// CreateTestOrder creates a consistent two-line order, optionally mutated by
// override functions.
func CreateTestOrder(overrides ...func(*domain.Order)) domain.Order {
	o := domain.Order{
		ID:           1,
		CustomerName: "Dana Cruz",
		Address:      "12 Pier Ave",
		Email:        "dana@example.com",
		Lines: []domain.OrderLine{
			{ItemID: 1, Qty: 1, Price: decimal.NewFromInt(35)},
			{ItemID: 2, Qty: 2, Price: decimal.NewFromInt(20)},
		},
		CreatedAt: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
	}
	o.Total = o.ComputeTotal()
	for _, override := range overrides {
		override(&o)
	}
	return o
}
