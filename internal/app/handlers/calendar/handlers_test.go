package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbe/internal/app/outbox"
	domainbooking "carbe/internal/domain/booking"
	domaincalendar "carbe/internal/domain/calendar"
	domainvehicle "carbe/internal/domain/vehicle"
	"carbe/internal/infra/storage/memory"
)

type testEnv struct {
	factory  memory.Factory
	vehicles *memory.VehicleRepository
	bookings *memory.BookingRepository
	outbox   *memory.Outbox
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	env := testEnv{
		vehicles: memory.NewVehicleRepository(),
		bookings: memory.NewBookingRepository(),
		outbox:   memory.NewOutbox(),
	}
	env.factory = memory.Factory{
		VehicleRepo:  env.vehicles,
		CalendarRepo: memory.NewCalendarRepository(),
		BookingRepo:  env.bookings,
	}

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, fixture := range []struct {
		id    string
		host  string
		price int64
	}{
		{"veh-1", "host-1", 8500},
		{"veh-2", "host-1", 12000},
		{"veh-3", "host-2", 9000},
	} {
		v, err := domainvehicle.New(domainvehicle.CreateParams{
			ID:             domainvehicle.VehicleID(fixture.id),
			Host:           domainvehicle.HostID(fixture.host),
			Make:           "Toyota",
			Model:          "Corolla",
			Seats:          5,
			BasePriceCents: fixture.price,
			Now:            now,
		})
		require.NoError(t, err)
		require.NoError(t, env.vehicles.Save(context.Background(), v))
	}
	return env
}

func TestSetAvailabilityWritesFlags(t *testing.T) {
	env := newTestEnv(t)
	handler := &SetAvailabilityHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}

	result, err := handler.Handle(context.Background(), SetAvailabilityCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-05", "2025-06-06", "2025-06-07", "2025-06-08"},
		VehicleIDs: []string{"veh-1"},
		Value:      "blocked",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Pairs)
	assert.Equal(t, []string{"2025-06"}, result.Months)

	query := &GetMonthHandler{UoWFactory: env.factory}
	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06", VehicleIDs: []string{"veh-1"}})
	require.NoError(t, err)
	assert.Equal(t, "blocked", snapshot.Availability["veh-1"]["2025-06-05"])
	assert.Equal(t, "blocked", snapshot.Availability["veh-1"]["2025-06-08"])

	records := env.outbox.Pending()
	require.Len(t, records, 1)
	assert.Equal(t, "calendar.availability_changed", records[0].Name)
}

func TestSetAvailabilityRejectsBookedDates(t *testing.T) {
	env := newTestEnv(t)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:             "bk-1",
		VehicleID:      "veh-1",
		GuestID:        "guest-1",
		Start:          "2025-06-07",
		End:            "2025-06-07",
		DailyRateCents: 8500,
		Now:            time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, b.Confirm(time.Now()))
	require.NoError(t, env.bookings.Save(context.Background(), b))

	handler := &SetAvailabilityHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}
	_, err = handler.Handle(context.Background(), SetAvailabilityCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-05", "2025-06-06", "2025-06-07", "2025-06-08"},
		VehicleIDs: []string{"veh-1"},
		Value:      "blocked",
	})
	assert.ErrorIs(t, err, domaincalendar.ErrDateBooked)

	// nothing may have been written
	query := &GetMonthHandler{UoWFactory: env.factory}
	snapshot, errQ := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06", VehicleIDs: []string{"veh-1"}})
	require.NoError(t, errQ)
	assert.Empty(t, snapshot.Availability["veh-1"])
	assert.Empty(t, env.outbox.Pending())
}

func TestSetAvailabilityValidation(t *testing.T) {
	env := newTestEnv(t)
	handler := &SetAvailabilityHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), SetAvailabilityCommand{
		HostID: "host-1", Dates: []string{"2025-06-05"}, VehicleIDs: []string{"veh-1"}, Value: "booked",
	})
	assert.ErrorIs(t, err, domaincalendar.ErrStatusNotSettable)

	_, err = handler.Handle(context.Background(), SetAvailabilityCommand{
		HostID: "host-1", VehicleIDs: []string{"veh-1"}, Value: "blocked",
	})
	assert.ErrorIs(t, err, domaincalendar.ErrNoTargets)

	_, err = handler.Handle(context.Background(), SetAvailabilityCommand{
		Dates: []string{"2025-06-05"}, VehicleIDs: []string{"veh-1"}, Value: "blocked",
	})
	assert.ErrorIs(t, err, ErrHostRequired)
}

func TestSetAvailabilityRejectsForeignVehicle(t *testing.T) {
	env := newTestEnv(t)
	handler := &SetAvailabilityHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), SetAvailabilityCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-05"},
		VehicleIDs: []string{"veh-3"},
		Value:      "blocked",
	})
	assert.ErrorIs(t, err, ErrVehicleNotOwned)
}

func TestSetPricingFixedOverride(t *testing.T) {
	env := newTestEnv(t)
	handler := &SetPricingHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), SetPricingCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-05", "2025-06-06"},
		VehicleIDs: []string{"veh-1", "veh-2"},
		Price:      PriceSpec{Type: PriceTypeFixed, AmountCents: 9900},
	})
	require.NoError(t, err)

	query := &GetMonthHandler{UoWFactory: env.factory}
	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06"})
	require.NoError(t, err)
	assert.Equal(t, int64(9900), snapshot.PricingOverrides["veh-1"]["2025-06-05"])
	assert.Equal(t, int64(9900), snapshot.PricingOverrides["veh-2"]["2025-06-06"])
}

func TestSetPricingMarkupUsesBasePrice(t *testing.T) {
	env := newTestEnv(t)
	handler := &SetPricingHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), SetPricingCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-05"},
		VehicleIDs: []string{"veh-1", "veh-2"},
		Price:      PriceSpec{Type: PriceTypeMarkup, Pct: 20},
	})
	require.NoError(t, err)

	query := &GetMonthHandler{UoWFactory: env.factory}
	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06"})
	require.NoError(t, err)
	// 8500 * 1.20 = 10200, 12000 * 1.20 = 14400
	assert.Equal(t, int64(10200), snapshot.PricingOverrides["veh-1"]["2025-06-05"])
	assert.Equal(t, int64(14400), snapshot.PricingOverrides["veh-2"]["2025-06-05"])
}

func TestSetPricingWritesOnBookedDates(t *testing.T) {
	env := newTestEnv(t)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:             "bk-1",
		VehicleID:      "veh-1",
		GuestID:        "guest-1",
		Start:          "2025-06-05",
		End:            "2025-06-05",
		DailyRateCents: 8500,
		Now:            time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, env.bookings.Save(context.Background(), b))

	handler := &SetPricingHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}
	_, err = handler.Handle(context.Background(), SetPricingCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-05"},
		VehicleIDs: []string{"veh-1"},
		Price:      PriceSpec{Type: PriceTypeFixed, AmountCents: 9900},
	})
	assert.NoError(t, err, "pricing has no booked-date guard; the rate applies to future stays")
}

func TestSetPricingValidation(t *testing.T) {
	env := newTestEnv(t)
	handler := &SetPricingHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}

	_, err := handler.Handle(context.Background(), SetPricingCommand{
		HostID: "host-1", Dates: []string{"2025-06-05"}, VehicleIDs: []string{"veh-1"},
		Price: PriceSpec{Type: PriceTypeFixed},
	})
	assert.ErrorIs(t, err, domaincalendar.ErrInvalidPrice)

	_, err = handler.Handle(context.Background(), SetPricingCommand{
		HostID: "host-1", Dates: []string{"2025-06-05"}, VehicleIDs: []string{"veh-1"},
		Price: PriceSpec{Type: "percentage"},
	})
	assert.ErrorIs(t, err, ErrInvalidPriceSpec)
}

func TestGetMonthDefaultsToWholeFleet(t *testing.T) {
	env := newTestEnv(t)
	query := &GetMonthHandler{UoWFactory: env.factory}

	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06", snapshot.Month)
	assert.Equal(t, int64(8500), snapshot.BasePriceByCar["veh-1"])
	assert.Equal(t, int64(12000), snapshot.BasePriceByCar["veh-2"])
	assert.NotContains(t, snapshot.BasePriceByCar, "veh-3", "other hosts' vehicles stay out")
}

func TestGetMonthIncludesOverlappingBookings(t *testing.T) {
	env := newTestEnv(t)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:             "bk-1",
		VehicleID:      "veh-1",
		GuestID:        "guest-1",
		GuestName:      "Dana",
		Start:          "2025-06-29",
		End:            "2025-07-02",
		DailyRateCents: 8500,
		Now:            time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, env.bookings.Save(context.Background(), b))

	query := &GetMonthHandler{UoWFactory: env.factory}
	for _, month := range []string{"2025-06", "2025-07"} {
		snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: month})
		require.NoError(t, err)
		require.Len(t, snapshot.Bookings, 1, month)
		assert.Equal(t, "bk-1", snapshot.Bookings[0].ID)
		assert.Equal(t, "Dana", snapshot.Bookings[0].GuestName)
	}

	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-08"})
	require.NoError(t, err)
	assert.Empty(t, snapshot.Bookings)
}

func TestGetMonthValidation(t *testing.T) {
	env := newTestEnv(t)
	query := &GetMonthHandler{UoWFactory: env.factory}

	_, err := query.Handle(context.Background(), GetMonthQuery{Month: "2025-06"})
	assert.ErrorIs(t, err, ErrHostRequired)

	_, err = query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "June 2025"})
	assert.Error(t, err)
}

func TestGetMonthResolvedNightlyPrices(t *testing.T) {
	env := newTestEnv(t)
	pricing := &SetPricingHandler{UoWFactory: env.factory, Outbox: env.outbox, Encoder: outbox.JSONEventEncoder{}}
	_, err := pricing.Handle(context.Background(), SetPricingCommand{
		HostID:     "host-1",
		Dates:      []string{"2025-06-08"},
		VehicleIDs: []string{"veh-1"},
		Price:      PriceSpec{Type: PriceTypeFixed, AmountCents: 7000},
	})
	require.NoError(t, err)

	query := &GetMonthHandler{UoWFactory: env.factory, WeekendMarkupPct: 20}
	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06", VehicleIDs: []string{"veh-1"}})
	require.NoError(t, err)

	prices := snapshot.NightlyPrices["veh-1"]
	require.NotNil(t, prices)
	assert.Equal(t, int64(8500), prices["2025-06-05"], "weekday stays at base price")
	assert.Equal(t, int64(10200), prices["2025-06-07"], "saturday carries the configured markup")
	assert.Equal(t, int64(7000), prices["2025-06-08"], "explicit override beats the markup")
	_, padded := prices["2025-05-26"]
	assert.False(t, padded, "leading pad days carry no price")
}

func TestGetMonthZeroMarkupDisablesWeekendSurcharge(t *testing.T) {
	env := newTestEnv(t)
	query := &GetMonthHandler{UoWFactory: env.factory}

	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06", VehicleIDs: []string{"veh-1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(8500), snapshot.NightlyPrices["veh-1"]["2025-06-07"])
}

func TestGetMonthIncludesRenderGrid(t *testing.T) {
	env := newTestEnv(t)
	query := &GetMonthHandler{UoWFactory: env.factory}

	snapshot, err := query.Handle(context.Background(), GetMonthQuery{HostID: "host-1", Month: "2025-06"})
	require.NoError(t, err)

	grid := snapshot.Grid
	require.Len(t, grid, 42)
	assert.Equal(t, "2025-05-26", grid[0].Date)
	assert.False(t, grid[0].InMonth)
	assert.Equal(t, "2025-06-07", grid[12].Date)
	assert.Equal(t, 7, grid[12].Day)
	assert.True(t, grid[12].InMonth)
	assert.True(t, grid[12].Weekend)
}
