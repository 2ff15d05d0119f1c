// internal/core/domain/item.go
package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ItemStatus represents the availability of a single item. "Available" is the
// only status with store-level semantics; everything else ("Taken", "Sold",
// "Reserved", ...) is business-defined and treated as not available.
type ItemStatus string

const (
	ItemAvailable ItemStatus = "Available"
	ItemTaken     ItemStatus = "Taken"
	ItemSold      ItemStatus = "Sold"
)

// Item represents a single sellable unit belonging to exactly one collection.
// CollectionID is an ownership relation looked up by value, not a pointer;
// items are never reassigned between collections.
type Item struct {
	ID           int64           `json:"id"`
	CollectionID int64           `json:"collection_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Status       ItemStatus      `json:"status"`
	Notes        string          `json:"notes,omitempty"`
}

// Available reports whether the item can still be sold
func (i *Item) Available() bool {
	return i.Status == ItemAvailable
}

// Validate performs domain validation on the item
func (i *Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.CollectionID == 0 {
		return fmt.Errorf("collection_id is required")
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// SortAvailableFirst orders items so that every available item precedes every
// non-available one. The sort is stable: ties keep their relative order, so
// server ordering survives within each group.
func SortAvailableFirst(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Available() && !items[b].Available()
	})
}
