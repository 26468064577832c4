package hostcal

import (
	"context"

	"github.com/google/uuid"

	"carbe/internal/app/commands"
	"carbe/internal/app/dto"
	calendarapp "carbe/internal/app/handlers/calendar"
	"carbe/internal/app/queries"
	"carbe/internal/domain/booking"
	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

// BusGateway adapts the host-calendar session to the application buses. From
// the session's point of view the store behind the buses is an external
// collaborator; each bulk write carries a fresh idempotency key so a network
// retry of the same outcome stays safe.
type BusGateway struct {
	Commands commands.Bus
	Queries  queries.Bus
	HostID   string
}

func (g BusGateway) FetchMonth(ctx context.Context, m datekey.Month, vehicles []vehicle.VehicleID) (*calendar.MonthData, error) {
	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, string(v))
	}
	snapshot, err := queries.Ask[calendarapp.GetMonthQuery, dto.CalendarMonth](ctx, g.Queries, calendarapp.GetMonthQuery{
		HostID:     g.HostID,
		Month:      string(m),
		VehicleIDs: ids,
	})
	if err != nil {
		return nil, err
	}
	return monthDataFromDTO(m, snapshot), nil
}

func (g BusGateway) WriteAvailability(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, flag calendar.DayStatus) error {
	cmd := calendarapp.SetAvailabilityCommand{
		HostID:          g.HostID,
		Dates:           dateStrings(dates),
		VehicleIDs:      vehicleStrings(vehicles),
		Value:           string(flag),
		IdempotencyKeyV: uuid.NewString(),
	}
	_, err := commands.Dispatch[calendarapp.SetAvailabilityCommand, *calendarapp.BulkWriteResult](ctx, g.Commands, cmd)
	return err
}

func (g BusGateway) WritePricing(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, change PriceChange) error {
	spec := calendarapp.PriceSpec{Type: calendarapp.PriceTypeMarkup, Pct: change.Pct}
	if change.Fixed {
		spec = calendarapp.PriceSpec{Type: calendarapp.PriceTypeFixed, AmountCents: change.AmountCents}
	}
	cmd := calendarapp.SetPricingCommand{
		HostID:          g.HostID,
		Dates:           dateStrings(dates),
		VehicleIDs:      vehicleStrings(vehicles),
		Price:           spec,
		IdempotencyKeyV: uuid.NewString(),
	}
	_, err := commands.Dispatch[calendarapp.SetPricingCommand, *calendarapp.BulkWriteResult](ctx, g.Commands, cmd)
	return err
}

func dateStrings(dates []datekey.DateKey) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, string(d))
	}
	return out
}

func vehicleStrings(vehicles []vehicle.VehicleID) []string {
	out := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, string(v))
	}
	return out
}

func monthDataFromDTO(m datekey.Month, snapshot dto.CalendarMonth) *calendar.MonthData {
	data := &calendar.MonthData{
		Month:          m,
		Flags:          make(map[vehicle.VehicleID]map[datekey.DateKey]calendar.DayStatus, len(snapshot.Availability)),
		Overrides:      make(map[vehicle.VehicleID]map[datekey.DateKey]int64, len(snapshot.PricingOverrides)),
		BasePriceCents: make(map[vehicle.VehicleID]int64, len(snapshot.BasePriceByCar)),
	}
	for vid, days := range snapshot.Availability {
		flags := make(map[datekey.DateKey]calendar.DayStatus, len(days))
		for day, status := range days {
			flags[datekey.DateKey(day)] = calendar.DayStatus(status)
		}
		data.Flags[vehicle.VehicleID(vid)] = flags
	}
	for vid, days := range snapshot.PricingOverrides {
		overrides := make(map[datekey.DateKey]int64, len(days))
		for day, price := range days {
			overrides[datekey.DateKey(day)] = price
		}
		data.Overrides[vehicle.VehicleID(vid)] = overrides
	}
	for vid, cents := range snapshot.BasePriceByCar {
		data.BasePriceCents[vehicle.VehicleID(vid)] = cents
	}
	for _, view := range snapshot.Bookings {
		data.Bookings = append(data.Bookings, &booking.Booking{
			ID:             booking.BookingID(view.ID),
			VehicleID:      vehicle.VehicleID(view.VehicleID),
			GuestID:        view.GuestID,
			GuestName:      view.GuestName,
			Start:          datekey.DateKey(view.Start),
			End:            datekey.DateKey(view.End),
			State:          booking.State(view.Status),
			DailyRateCents: view.DailyRateCents,
			TotalCents:     view.TotalCents,
		})
	}
	return data
}
