package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbe/internal/domain/booking"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

func testBooking(t *testing.T, id string, start, end datekey.DateKey) *booking.Booking {
	t.Helper()
	b, err := booking.New(booking.CreateParams{
		ID:             booking.BookingID(id),
		VehicleID:      "veh-1",
		GuestID:        "guest-1",
		Start:          start,
		End:            end,
		DailyRateCents: 8500,
		Now:            time.Now(),
	})
	require.NoError(t, err)
	return b
}

func TestStatusBookingWins(t *testing.T) {
	confirmed := testBooking(t, "bk-1", "2025-06-10", "2025-06-12")
	require.NoError(t, confirmed.Confirm(time.Now()))
	pending := testBooking(t, "bk-2", "2025-06-20", "2025-06-21")

	md := &MonthData{
		Month: "2025-06",
		Flags: map[vehicle.VehicleID]map[datekey.DateKey]DayStatus{
			"veh-1": {
				"2025-06-10": StatusAvailable, // shadowed by the confirmed booking
				"2025-06-15": StatusBlocked,
			},
		},
		Bookings: []*booking.Booking{confirmed, pending},
	}

	assert.Equal(t, StatusBooked, md.Status("veh-1", "2025-06-10"))
	assert.Equal(t, StatusBooked, md.Status("veh-1", "2025-06-12"))
	assert.Equal(t, StatusPending, md.Status("veh-1", "2025-06-20"))
	assert.Equal(t, StatusBlocked, md.Status("veh-1", "2025-06-15"))
	assert.Equal(t, StatusAvailable, md.Status("veh-1", "2025-06-01"), "no flag defaults to available")
	assert.Equal(t, StatusAvailable, md.Status("veh-2", "2025-06-10"), "other vehicle unaffected")
}

func TestStatusCancelledBookingFreesSpan(t *testing.T) {
	cancelled := testBooking(t, "bk-3", "2025-06-10", "2025-06-12")
	require.NoError(t, cancelled.Cancel("plans changed", time.Now()))

	md := &MonthData{
		Month: "2025-06",
		Flags: map[vehicle.VehicleID]map[datekey.DateKey]DayStatus{
			"veh-1": {"2025-06-11": StatusBlocked},
		},
		Bookings: []*booking.Booking{cancelled},
	}

	assert.Equal(t, StatusAvailable, md.Status("veh-1", "2025-06-10"))
	assert.Equal(t, StatusBlocked, md.Status("veh-1", "2025-06-11"), "underlying flag shows again")
}

func TestPriceCentsResolution(t *testing.T) {
	md := &MonthData{
		Month: "2025-06",
		Overrides: map[vehicle.VehicleID]map[datekey.DateKey]int64{
			"veh-1": {"2025-06-07": 7000},
		},
		BasePriceCents: map[vehicle.VehicleID]int64{"veh-1": 8500},
	}

	assert.Equal(t, int64(7000), md.PriceCents("veh-1", "2025-06-07", 15), "override wins even on a weekend")
	assert.Equal(t, int64(8500), md.PriceCents("veh-1", "2025-06-09", 15), "weekday base price")
	// 2025-06-08 is a Sunday: 8500 * 1.15 = 9775
	assert.Equal(t, int64(9775), md.PriceCents("veh-1", "2025-06-08", 15))
}

func TestMarkupPrice(t *testing.T) {
	assert.Equal(t, int64(10200), MarkupPrice(8500, 20))
	assert.Equal(t, int64(8500), MarkupPrice(8500, 0))
	assert.Equal(t, int64(7650), MarkupPrice(8500, -10))
	// rounds half away from zero: 333 * 1.15 = 382.95
	assert.Equal(t, int64(383), MarkupPrice(333, 15))
}

func TestBookedAny(t *testing.T) {
	b := testBooking(t, "bk-4", "2025-06-10", "2025-06-12")
	md := &MonthData{Month: "2025-06", Bookings: []*booking.Booking{b}}

	assert.True(t, md.BookedAny([]vehicle.VehicleID{"veh-1"}, []datekey.DateKey{"2025-06-09", "2025-06-10"}))
	assert.False(t, md.BookedAny([]vehicle.VehicleID{"veh-1"}, []datekey.DateKey{"2025-06-08", "2025-06-09"}))
	assert.False(t, md.BookedAny([]vehicle.VehicleID{"veh-2"}, []datekey.DateKey{"2025-06-10"}))
}

func TestSettableAndEditable(t *testing.T) {
	assert.True(t, StatusAvailable.Settable())
	assert.True(t, StatusBlocked.Settable())
	assert.False(t, StatusPending.Settable())
	assert.False(t, StatusBooked.Settable())
	assert.False(t, StatusPending.Editable())
	assert.False(t, StatusBooked.Editable())
	assert.False(t, DayStatus("nonsense").Settable())
}
