package model

import "github.com/shopspring/decimal"

type Priority string

const (
	PriorityUrgent  Priority = "urgent"
	PriorityWarning Priority = "warning"
	PriorityNormal  Priority = "normal"
)

func PriorityFor(s Status) Priority {
	switch s {
	case StatusUrgent:
		return PriorityUrgent
	case StatusWarning:
		return PriorityWarning
	default:
		return PriorityNormal
	}
}

// ShoppingListEntry is a snapshot of a TrackedItem taken when it was added to the list.
type ShoppingListEntry struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Icon           string          `json:"icon"`
	Priority       Priority        `json:"priority"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

func NewShoppingListEntry(ti TrackedItem) ShoppingListEntry {
	return ShoppingListEntry{
		ID:             ti.ID,
		Name:           ti.Name,
		Icon:           ti.Icon,
		Priority:       PriorityFor(ti.Status),
		EstimatedPrice: ti.EstimatedPrice,
	}
}
