// internal/core/domain/order.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the state of an order's payment
type PaymentStatus string

// Payment status constants
const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment records how an order was (or will be) settled
type Payment struct {
	Status PaymentStatus `json:"status"`
	Method string        `json:"method,omitempty"`
}

// OrderLine is one purchased position. Price is a point-in-time snapshot
// taken at checkout; it is never re-linked to the item's current price.
type OrderLine struct {
	ItemID int64           `json:"item_id"`
	Qty    int             `json:"qty"`
	Price  decimal.Decimal `json:"price"`
}

// Total returns the line total (snapshot price times quantity)
func (l OrderLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Order represents a customer purchase event
type Order struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customer_name"`
	Address      string          `json:"address,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Email        string          `json:"email,omitempty"`
	Lines        []OrderLine     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Payment      *Payment        `json:"payment,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ComputeTotal sums the line totals
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Paid reports whether the order has been fully settled
func (o *Order) Paid() bool {
	return o.Payment != nil && o.Payment.Status == PaymentPaid
}

// Validate performs domain validation on the order. Total must agree with the
// sum of the line totals at order time.
func (o *Order) Validate() error {
	if o.CustomerName == "" {
		return fmt.Errorf("customer_name is required")
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("order requires at least one line")
	}
	for i, l := range o.Lines {
		if l.Qty <= 0 {
			return fmt.Errorf("line %d: qty must be positive", i)
		}
		if l.Price.IsNegative() {
			return fmt.Errorf("line %d: price cannot be negative", i)
		}
	}
	if !o.Total.Equal(o.ComputeTotal()) {
		return fmt.Errorf("total %s does not match line totals %s", o.Total, o.ComputeTotal())
	}
	return nil
}
