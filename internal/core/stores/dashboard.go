// internal/core/stores/dashboard.go
package stores

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/dropdash/internal/adapters/rediscache"
	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/ports"
)

// Summary aggregates the session snapshot into the numbers the sales
// dashboard renders.
type Summary struct {
	Collections       int             `json:"collections"`
	ActiveCollections int             `json:"active_collections"`
	Items             int             `json:"items"`
	AvailableItems    int             `json:"available_items"`
	CapitalInvested   decimal.Decimal `json:"capital_invested"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	Orders            int             `json:"orders"`
	PaidOrders        int             `json:"paid_orders"`
	PaidRevenue       decimal.Decimal `json:"paid_revenue"`
	OutstandingTotal  decimal.Decimal `json:"outstanding_total"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// DashboardService computes the sales summary from store snapshots. When a
// shared cache is configured the computed summary is reused for the TTL
// window; without one every call recomputes.
type DashboardService struct {
	collections ports.CollectionStore
	orders      ports.OrderStore
	cache       ports.CacheRepository
	ttl         time.Duration
	logger      *slog.Logger
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(collections ports.CollectionStore, orders ports.OrderStore,
	cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		collections: collections,
		orders:      orders,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With(slog.String("service", "dashboard")),
	}
}

// Summary returns the dashboard summary, served from cache when fresh
func (d *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	if d.cache == nil {
		return d.compute(), nil
	}

	cacheKey := rediscache.BuildKey(rediscache.PrefixDashboard, "summary")
	var summary Summary
	err := d.cache.GetOrSet(ctx, cacheKey, &summary, func() (interface{}, error) {
		return d.compute(), nil
	}, d.ttl)
	if err != nil {
		d.logger.WarnContext(ctx, "summary cache unavailable, computing directly",
			slog.String("error", err.Error()))
		return d.compute(), nil
	}
	return &summary, nil
}

// Invalidate drops the cached summary, e.g. after a mutation burst
func (d *DashboardService) Invalidate(ctx context.Context) {
	if d.cache == nil {
		return
	}
	cacheKey := rediscache.BuildKey(rediscache.PrefixDashboard, "summary")
	if err := d.cache.Delete(ctx, cacheKey); err != nil {
		d.logger.WarnContext(ctx, "failed to invalidate summary cache",
			slog.String("error", err.Error()))
	}
}

func (d *DashboardService) compute() *Summary {
	summary := &Summary{
		CapitalInvested:  decimal.Zero,
		TotalSales:       decimal.Zero,
		PaidRevenue:      decimal.Zero,
		OutstandingTotal: decimal.Zero,
		GeneratedAt:      time.Now(),
	}

	for _, c := range d.collections.Collections() {
		summary.Collections++
		if c.Status == domain.CollectionActive {
			summary.ActiveCollections++
		}
		summary.Items += c.Qty
		summary.AvailableItems += c.StockQty
		summary.CapitalInvested = summary.CapitalInvested.Add(c.Capital)
		summary.TotalSales = summary.TotalSales.Add(c.TotalSales)
	}

	for _, o := range d.orders.Orders() {
		summary.Orders++
		if o.Paid() {
			summary.PaidOrders++
			summary.PaidRevenue = summary.PaidRevenue.Add(o.Total)
		} else {
			summary.OutstandingTotal = summary.OutstandingTotal.Add(o.Total)
		}
	}

	return summary
}
