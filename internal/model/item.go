package model

import "github.com/shopspring/decimal"

type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusUrgent  Status = "urgent"
)

// TrackedItem is a catalog product enriched with its depletion estimate.
type TrackedItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Icon           string          `json:"icon"`
	StartEpoch     int64           `json:"start_epoch"`
	TotalDays      int             `json:"total_days"`
	DaysLeft       int             `json:"days_left"`
	Status         Status          `json:"status"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}
