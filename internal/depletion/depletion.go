package depletion

import (
	"math"

	"pantry/internal/misc"
	"pantry/internal/model"
)

const (
	DayMillis = 86_400_000

	// DefaultTotalDays is used when the quantity is unknown, it is also the floor for known quantities.
	DefaultTotalDays = 30
	daysPerUnit      = 2

	urgentMaxDays  = 2
	warningMaxDays = 5
)

type Estimate struct {
	TotalDays int
	DaysLeft  int
	Status    model.Status
}

// EstimateAt computes the depletion of an item with the given quantity that
// started being tracked at startEpoch. Epochs are unix milliseconds.
func EstimateAt(quantity float64, startEpoch int64, now int64) Estimate {
	total := TotalDays(quantity)
	passed := misc.Max(0, (now-startEpoch)/DayMillis)
	left := int(misc.Max(0, int64(total)-passed))
	return Estimate{
		TotalDays: total,
		DaysLeft:  left,
		Status:    StatusFor(left),
	}
}

// TotalDays treats a zero, negative or non-finite quantity as unknown.
func TotalDays(quantity float64) int {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return DefaultTotalDays
	}
	days := math.Floor(quantity * daysPerUnit)
	if days >= math.MaxInt32 {
		return math.MaxInt32
	}
	return misc.Max(DefaultTotalDays, int(days))
}

func StatusFor(daysLeft int) model.Status {
	switch {
	case daysLeft <= urgentMaxDays:
		return model.StatusUrgent
	case daysLeft <= warningMaxDays:
		return model.StatusWarning
	default:
		return model.StatusSuccess
	}
}
