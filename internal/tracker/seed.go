package tracker

import (
	"time"

	"github.com/shopspring/decimal"
	"pantry/internal/depletion"
	"pantry/internal/model"
)

// Seeder provides the items shown while no catalog has been written yet.
type Seeder interface {
	Seed(now time.Time) []model.TrackedItem
}

type demoProduct struct {
	id       string
	name     string
	icon     string
	price    string
	quantity float64
	daysAgo  int64
}

var demoProducts = []demoProduct{
	{id: "demo-1", name: "Whole Milk", icon: "🥛", price: "3.49", quantity: 2, daysAgo: 28},
	{id: "demo-2", name: "Eggs", icon: "🥚", price: "4.99", quantity: 12, daysAgo: 26},
	{id: "demo-3", name: "Rice", icon: "🍚", price: "12.90", quantity: 20, daysAgo: 10},
	{id: "demo-4", name: "Dish Soap", icon: "🧼", price: "2.75", quantity: 1, daysAgo: 5},
	{id: "demo-5", name: "Coffee Beans", icon: "☕", price: "9.80", quantity: 16, daysAgo: 30},
}

// DemoSeeder returns a fixed demo set with start epochs offset from now. The
// seed lives only in memory and is never written back to the store.
type DemoSeeder struct{}

func (DemoSeeder) Seed(now time.Time) []model.TrackedItem {
	nowMs := now.UnixMilli()
	items := make([]model.TrackedItem, 0, len(demoProducts))
	for _, p := range demoProducts {
		start := nowMs - p.daysAgo*depletion.DayMillis
		e := depletion.EstimateAt(p.quantity, start, nowMs)
		items = append(items, model.TrackedItem{
			ID:             p.id,
			Name:           p.name,
			Icon:           p.icon,
			StartEpoch:     start,
			TotalDays:      e.TotalDays,
			DaysLeft:       e.DaysLeft,
			Status:         e.Status,
			EstimatedPrice: decimal.RequireFromString(p.price),
		})
	}
	return items
}

// NoSeed leaves the tracker empty until a catalog exists.
type NoSeed struct{}

func (NoSeed) Seed(time.Time) []model.TrackedItem {
	return nil
}
