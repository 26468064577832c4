package calendar

import (
	"context"
	"math"

	"carbe/internal/domain/booking"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

// DefaultWeekendMarkupPct is applied to the base price on Saturdays and
// Sundays when no explicit override exists for the date.
const DefaultWeekendMarkupPct = 15.0

// MonthData is the per-month snapshot for a set of vehicles: host day flags,
// price overrides, the bookings overlapping the month and base prices.
// It is replaced wholesale on refetch and never mutated in place.
type MonthData struct {
	Month          datekey.Month
	Flags          map[vehicle.VehicleID]map[datekey.DateKey]DayStatus
	Overrides      map[vehicle.VehicleID]map[datekey.DateKey]int64
	Bookings       []*booking.Booking
	BasePriceCents map[vehicle.VehicleID]int64
}

// Status derives the day state for one vehicle. A booking that still blocks
// its span always wins over the stored flag: confirmed and completed map to
// booked, pending maps to pending. Without a flag the day is available.
func (md *MonthData) Status(v vehicle.VehicleID, d datekey.DateKey) DayStatus {
	for _, b := range md.Bookings {
		if b.VehicleID != v || !b.Blocks() || !b.Covers(d) {
			continue
		}
		if b.State == booking.StatePending {
			return StatusPending
		}
		return StatusBooked
	}
	if flags, ok := md.Flags[v]; ok {
		if flag, ok := flags[d]; ok && flag.Settable() {
			return flag
		}
	}
	return StatusAvailable
}

// PriceCents resolves the nightly price for one vehicle and day: an explicit
// override wins, otherwise the base price with the weekend markup applied on
// Saturdays and Sundays.
func (md *MonthData) PriceCents(v vehicle.VehicleID, d datekey.DateKey, weekendMarkupPct float64) int64 {
	if overrides, ok := md.Overrides[v]; ok {
		if price, ok := overrides[d]; ok {
			return price
		}
	}
	base := md.BasePriceCents[v]
	if d.Weekend() {
		return MarkupPrice(base, weekendMarkupPct)
	}
	return base
}

// BookedAny reports whether any of the (vehicle, date) targets is held by a
// booking, which makes the whole bulk edit invalid.
func (md *MonthData) BookedAny(vehicles []vehicle.VehicleID, dates []datekey.DateKey) bool {
	for _, v := range vehicles {
		for _, d := range dates {
			if !md.Status(v, d).Editable() {
				return true
			}
		}
	}
	return false
}

// MarkupPrice computes round(base * (1 + pct/100)).
func MarkupPrice(baseCents int64, pct float64) int64 {
	return int64(math.Round(float64(baseCents) * (1 + pct/100)))
}

// Repository persists host day flags and price overrides per vehicle.
type Repository interface {
	Flags(ctx context.Context, m datekey.Month, vehicles []vehicle.VehicleID) (map[vehicle.VehicleID]map[datekey.DateKey]DayStatus, error)
	Overrides(ctx context.Context, m datekey.Month, vehicles []vehicle.VehicleID) (map[vehicle.VehicleID]map[datekey.DateKey]int64, error)
	// SetFlags writes the same flag for every (vehicle, date) pair.
	SetFlags(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, flag DayStatus) error
	// SetOverrides writes a per-vehicle absolute price for every date.
	SetOverrides(ctx context.Context, dates []datekey.DateKey, prices map[vehicle.VehicleID]int64) error
}
