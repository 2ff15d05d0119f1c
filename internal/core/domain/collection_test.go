// internal/core/domain/collection_test.go
package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/dropdash/internal/core/domain"
)

func TestComputeAggregate(t *testing.T) {
	tests := []struct {
		name      string
		available int
		other     int
		wantQty   int
		wantStock int
		want      domain.CollectionStatus
	}{
		{
			name:      "all_available_is_active",
			available: 2,
			other:     0,
			wantQty:   2,
			wantStock: 2,
			want:      domain.CollectionActive,
		},
		{
			name:      "all_sold_is_sold_out",
			available: 0,
			other:     2,
			wantQty:   2,
			wantStock: 0,
			want:      domain.CollectionSoldOut,
		},
		{
			name:      "single_available_keeps_active",
			available: 1,
			other:     4,
			wantQty:   5,
			wantStock: 1,
			want:      domain.CollectionActive,
		},
		{
			name:      "empty_item_set_is_sold_out",
			available: 0,
			other:     0,
			wantQty:   0,
			wantStock: 0,
			want:      domain.CollectionSoldOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]domain.Item, 0, tt.available+tt.other)
			for i := 0; i < tt.available; i++ {
				items = append(items, domain.Item{Status: domain.ItemAvailable})
			}
			for i := 0; i < tt.other; i++ {
				items = append(items, domain.Item{Status: domain.ItemSold})
			}

			agg := domain.ComputeAggregate(items)

			assert.Equal(t, tt.wantQty, agg.Qty)
			assert.Equal(t, tt.wantStock, agg.StockQty)
			assert.Equal(t, tt.want, agg.Status)
		})
	}
}

func TestCollection_MatchesAndApply(t *testing.T) {
	c := domain.Collection{ID: 1, Status: domain.CollectionActive, Qty: 0, StockQty: 0}
	agg := domain.Aggregate{Qty: 2, StockQty: 2, Status: domain.CollectionActive}

	assert.False(t, c.Matches(agg))

	c.ApplyAggregate(agg)
	assert.True(t, c.Matches(agg))
	assert.Equal(t, 2, c.Qty)
	assert.Equal(t, 2, c.StockQty)
	assert.Equal(t, domain.CollectionActive, c.Status)
}

func TestCollection_Validate(t *testing.T) {
	c := domain.Collection{Name: "Fall Drop", Capital: decimal.NewFromInt(500)}
	require.NoError(t, c.Validate())

	c.Name = ""
	assert.ErrorContains(t, c.Validate(), "name is required")

	c.Name = "Fall Drop"
	c.Capital = decimal.NewFromInt(-1)
	assert.ErrorContains(t, c.Validate(), "capital cannot be negative")
}
