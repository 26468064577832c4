package hostcal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbe/internal/domain/booking"
	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

func newTestSession(t *testing.T, data *calendar.MonthData) *Session {
	t.Helper()
	s := NewSession(SessionConfig{
		Fetcher:     fixedFetcher{data: data},
		Writer:      &stubWriter{},
		Vehicles:    []vehicle.VehicleID{"veh-1"},
		Displayed:   "2025-06",
		SlideHeight: 600,
	})
	require.NoError(t, s.Open(context.Background()))
	return s
}

func TestSessionClickDerivesStatus(t *testing.T) {
	b, err := booking.New(booking.CreateParams{
		ID:             "bk-1",
		VehicleID:      "veh-1",
		GuestID:        "guest-1",
		Start:          "2025-06-10",
		End:            "2025-06-12",
		DailyRateCents: 8500,
		Now:            time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, b.Confirm(time.Now()))

	s := newTestSession(t, &calendar.MonthData{Month: "2025-06", Bookings: []*booking.Booking{b}})

	s.Click("2025-06-10")
	assert.True(t, s.Selection.IsEmpty(), "clicking a booked day selects nothing")

	s.Click("2025-06-05")
	assert.Equal(t, []datekey.DateKey{"2025-06-05"}, s.Selection.Dates())
}

func TestSessionClickIgnoresUnloadedMonth(t *testing.T) {
	s := newTestSession(t, nil)
	s.Click("2030-01-15")
	assert.True(t, s.Selection.IsEmpty())
}

func TestSelectVehiclesResetsSelection(t *testing.T) {
	s := newTestSession(t, nil)
	s.Click("2025-06-05")
	require.False(t, s.Selection.IsEmpty())

	require.NoError(t, s.SelectVehicles(context.Background(), []vehicle.VehicleID{"veh-2"}))
	assert.True(t, s.Selection.IsEmpty())
	assert.Equal(t, []vehicle.VehicleID{"veh-2"}, s.Cache.Vehicles())

	_, ok := s.Cache.Get("2025-06")
	assert.True(t, ok, "window reloads under the new vehicle set")
}
