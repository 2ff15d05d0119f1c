// internal/core/domain/collection.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CollectionStatus represents the availability of a collection as a whole
type CollectionStatus string

// Status constants
const (
	CollectionActive  CollectionStatus = "Active"
	CollectionSoldOut CollectionStatus = "Sold Out"
)

// Collection represents a product drop: a batch of items released together.
// Qty, StockQty and Status are derived from the collection's item set; the
// backend persists them for fast listing but the item table stays canonical.
type Collection struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	ReleaseDate time.Time        `json:"release_date"`
	Capital     decimal.Decimal  `json:"capital"`
	Qty         int              `json:"qty"`
	StockQty    int              `json:"stock_qty"`
	Status      CollectionStatus `json:"status"`
	TotalSales  decimal.Decimal  `json:"total_sales"`
}

// Aggregate holds the stock fields derived from a collection's live item set
type Aggregate struct {
	Qty      int              `json:"qty"`
	StockQty int              `json:"stock_qty"`
	Status   CollectionStatus `json:"status"`
}

// ComputeAggregate derives qty/stock_qty/status from a collection's items.
// A collection is Active iff at least one item is still available.
func ComputeAggregate(items []Item) Aggregate {
	agg := Aggregate{Qty: len(items), Status: CollectionSoldOut}
	for i := range items {
		if items[i].Available() {
			agg.StockQty++
		}
	}
	if agg.StockQty > 0 {
		agg.Status = CollectionActive
	}
	return agg
}

// Matches reports whether the cached stock fields already agree with the
// derived aggregate, i.e. whether a reconciliation write can be skipped.
func (c *Collection) Matches(agg Aggregate) bool {
	return c.Qty == agg.Qty && c.StockQty == agg.StockQty && c.Status == agg.Status
}

// ApplyAggregate writes the derived stock fields onto the collection
func (c *Collection) ApplyAggregate(agg Aggregate) {
	c.Qty = agg.Qty
	c.StockQty = agg.StockQty
	c.Status = agg.Status
}

// Validate performs domain validation on the collection
func (c *Collection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Capital.IsNegative() {
		return fmt.Errorf("capital cannot be negative")
	}
	return nil
}
