package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogProductDecodesLenientFields(t *testing.T) {
	raw := `[
		{"id": 1712345678901, "name": "Milk", "icon": "🥛", "price": 3.5, "quantity": 5},
		{"id": "2", "name": "Rice", "icon": "🍚", "price": "12.90", "quantity": "20"},
		{"id": "3", "name": "Soap", "icon": "🧼", "price": 2, "quantity": "lots"},
		{"id": "4", "name": "Tea", "icon": "🍵", "price": 4}
	]`
	var ps []CatalogProduct
	require.NoError(t, json.Unmarshal([]byte(raw), &ps))
	require.Len(t, ps, 4)

	assert.Equal(t, "1712345678901", ps[0].ID)
	assert.Equal(t, Quantity(5), ps[0].Quantity)
	assert.True(t, decimal.RequireFromString("3.5").Equal(ps[0].Price))

	assert.Equal(t, "2", ps[1].ID)
	assert.Equal(t, Quantity(20), ps[1].Quantity)
	assert.True(t, decimal.RequireFromString("12.90").Equal(ps[1].Price))

	assert.Equal(t, Quantity(0), ps[2].Quantity)
	assert.Equal(t, Quantity(0), ps[3].Quantity)
}

func TestCatalogProductRejectsMalformedJSON(t *testing.T) {
	var ps []CatalogProduct
	assert.Error(t, json.Unmarshal([]byte(`[{"id": {}}]`), &ps))
	assert.Error(t, json.Unmarshal([]byte(`{not json`), &ps))
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, PriorityUrgent, PriorityFor(StatusUrgent))
	assert.Equal(t, PriorityWarning, PriorityFor(StatusWarning))
	assert.Equal(t, PriorityNormal, PriorityFor(StatusSuccess))
	assert.Equal(t, PriorityNormal, PriorityFor(Status("")))
}

func TestNewShoppingListEntry(t *testing.T) {
	ti := TrackedItem{
		ID:             "1",
		Name:           "Milk",
		Icon:           "🥛",
		Status:         StatusWarning,
		EstimatedPrice: decimal.RequireFromString("3.50"),
	}
	e := NewShoppingListEntry(ti)
	assert.Equal(t, "1", e.ID)
	assert.Equal(t, PriorityWarning, e.Priority)
	assert.True(t, ti.EstimatedPrice.Equal(e.EstimatedPrice))
}
