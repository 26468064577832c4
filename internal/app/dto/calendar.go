package dto

import (
	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
)

// CalendarMonth is the wire snapshot for one month and one vehicle set:
// raw host flags, price overrides, the bookings overlapping the month and
// per-vehicle base prices. Status derivation happens on the consumer side.
type CalendarMonth struct {
	Month            string                       `json:"month"`
	Availability     map[string]map[string]string `json:"availability"`
	PricingOverrides map[string]map[string]int64  `json:"pricingOverrides"`
	Bookings         []BookingView                `json:"bookings"`
	BasePriceByCar   map[string]int64             `json:"basePriceByCar"`
	NightlyPrices    map[string]map[string]int64  `json:"nightlyPrices"`
	Grid             []GridCell                   `json:"grid"`
}

type BookingView struct {
	ID             string `json:"id"`
	VehicleID      string `json:"vehicle_id"`
	GuestID        string `json:"guest_id"`
	GuestName      string `json:"guest_name"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Status         string `json:"status"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	TotalCents     int64  `json:"total_cents"`
}

// MapCalendarMonth flattens the domain snapshot into its wire form. The
// weekend markup percentage feeds the resolved nightly prices, which are
// computed per in-month day so clients render prices without re-deriving them.
func MapCalendarMonth(md *calendar.MonthData, weekendMarkupPct float64) CalendarMonth {
	if md == nil {
		return CalendarMonth{}
	}
	cells := datekey.MonthGrid(md.Month)
	out := CalendarMonth{
		Month:            string(md.Month),
		Availability:     make(map[string]map[string]string, len(md.Flags)),
		PricingOverrides: make(map[string]map[string]int64, len(md.Overrides)),
		Bookings:         make([]BookingView, 0, len(md.Bookings)),
		BasePriceByCar:   make(map[string]int64, len(md.BasePriceCents)),
		NightlyPrices:    make(map[string]map[string]int64, len(md.BasePriceCents)),
		Grid:             MapMonthGrid(cells),
	}
	for vid, flags := range md.Flags {
		days := make(map[string]string, len(flags))
		for d, flag := range flags {
			days[string(d)] = string(flag)
		}
		out.Availability[string(vid)] = days
	}
	for vid, overrides := range md.Overrides {
		days := make(map[string]int64, len(overrides))
		for d, price := range overrides {
			days[string(d)] = price
		}
		out.PricingOverrides[string(vid)] = days
	}
	for _, b := range md.Bookings {
		out.Bookings = append(out.Bookings, BookingView{
			ID:             string(b.ID),
			VehicleID:      string(b.VehicleID),
			GuestID:        b.GuestID,
			GuestName:      b.GuestName,
			Start:          string(b.Start),
			End:            string(b.End),
			Status:         string(b.State),
			DailyRateCents: b.DailyRateCents,
			TotalCents:     b.TotalCents,
		})
	}
	for vid, cents := range md.BasePriceCents {
		out.BasePriceByCar[string(vid)] = cents
		prices := make(map[string]int64)
		for _, c := range cells {
			if !c.InMonth {
				continue
			}
			prices[string(c.Date)] = md.PriceCents(vid, c.Date, weekendMarkupPct)
		}
		out.NightlyPrices[string(vid)] = prices
	}
	return out
}

// GridCell mirrors datekey.GridCell for rendering clients.
type GridCell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"in_month"`
	Weekend bool   `json:"weekend"`
}

func MapMonthGrid(cells []datekey.GridCell) []GridCell {
	out := make([]GridCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, GridCell{Date: string(c.Date), Day: c.Day, InMonth: c.InMonth, Weekend: c.Weekend})
	}
	return out
}
