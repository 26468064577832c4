package hostcal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbe/internal/domain/booking"
	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

type stubWriter struct {
	mu           sync.Mutex
	err          error
	availability []calendar.DayStatus
	pricing      []PriceChange
	dates        [][]datekey.DateKey
}

func (w *stubWriter) WriteAvailability(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, flag calendar.DayStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.availability = append(w.availability, flag)
	w.dates = append(w.dates, dates)
	return nil
}

func (w *stubWriter) WritePricing(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, change PriceChange) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.pricing = append(w.pricing, change)
	w.dates = append(w.dates, dates)
	return nil
}

type fixedFetcher struct {
	data *calendar.MonthData
}

func (f fixedFetcher) FetchMonth(ctx context.Context, m datekey.Month, vehicles []vehicle.VehicleID) (*calendar.MonthData, error) {
	if f.data != nil && f.data.Month == m {
		return f.data, nil
	}
	return &calendar.MonthData{Month: m}, nil
}

func newTestDispatcher(t *testing.T, writer *stubWriter, data *calendar.MonthData) (*Dispatcher, *Selection, *MonthCache) {
	t.Helper()
	cache := NewMonthCache(fixedFetcher{data: data}, []vehicle.VehicleID{"veh-1"}, nil)
	selection := NewSelection()
	return NewDispatcher(writer, cache, selection), selection, cache
}

func TestSetAvailabilityAppliesSelection(t *testing.T) {
	writer := &stubWriter{}
	d, selection, cache := newTestDispatcher(t, writer, nil)
	_, err := cache.Ensure(context.Background(), "2025-06")
	require.NoError(t, err)

	selection.Click("2025-06-05", calendar.StatusAvailable)
	selection.Click("2025-06-08", calendar.StatusAvailable)

	require.NoError(t, d.SetAvailability(context.Background(), calendar.StatusBlocked))
	require.Len(t, writer.availability, 1)
	assert.Equal(t, calendar.StatusBlocked, writer.availability[0])
	assert.Len(t, writer.dates[0], 4)
	assert.True(t, selection.IsEmpty(), "selection clears after a successful write")
}

func TestSetAvailabilityRejectsNonSettableFlag(t *testing.T) {
	writer := &stubWriter{}
	d, selection, _ := newTestDispatcher(t, writer, nil)
	selection.Click("2025-06-05", calendar.StatusAvailable)

	assert.ErrorIs(t, d.SetAvailability(context.Background(), calendar.StatusBooked), calendar.ErrStatusNotSettable)
	assert.Empty(t, writer.availability)
}

func TestDispatchWithoutSelection(t *testing.T) {
	writer := &stubWriter{}
	d, _, _ := newTestDispatcher(t, writer, nil)
	assert.ErrorIs(t, d.SetAvailability(context.Background(), calendar.StatusBlocked), ErrNothingSelected)
}

func TestFailedWriteKeepsSelection(t *testing.T) {
	writer := &stubWriter{err: errors.New("store unavailable")}
	d, selection, _ := newTestDispatcher(t, writer, nil)
	selection.Click("2025-06-05", calendar.StatusAvailable)
	selection.Click("2025-06-08", calendar.StatusAvailable)

	err := d.SetAvailability(context.Background(), calendar.StatusBlocked)
	require.Error(t, err)
	assert.Len(t, selection.Dates(), 4, "selection survives a failed write for retry")
	assert.False(t, d.Busy())
}

func TestBookedTargetRejectsWholeBatch(t *testing.T) {
	b, err := booking.New(booking.CreateParams{
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

	writer := &stubWriter{}
	data := &calendar.MonthData{Month: "2025-06", Bookings: []*booking.Booking{b}}
	d, selection, cache := newTestDispatcher(t, writer, data)
	_, err = cache.Ensure(context.Background(), "2025-06")
	require.NoError(t, err)

	// the booked day sits inside the filled range
	selection.Click("2025-06-05", calendar.StatusAvailable)
	selection.Click("2025-06-08", calendar.StatusAvailable)

	err = d.SetAvailability(context.Background(), calendar.StatusBlocked)
	assert.ErrorIs(t, err, calendar.ErrDateBooked)
	assert.Empty(t, writer.availability, "no partial write reaches the store")
	assert.Len(t, selection.Dates(), 4, "selection stays for the host to adjust")
}

func TestSetPricingFixedAndMarkup(t *testing.T) {
	writer := &stubWriter{}
	d, selection, _ := newTestDispatcher(t, writer, nil)
	selection.Click("2025-06-05", calendar.StatusAvailable)

	require.NoError(t, d.SetPricing(context.Background(), PriceChange{Fixed: true, AmountCents: 9900}))
	require.Len(t, writer.pricing, 1)
	assert.Equal(t, int64(9900), writer.pricing[0].AmountCents)

	selection.Click("2025-06-06", calendar.StatusAvailable)
	require.NoError(t, d.SetPricing(context.Background(), PriceChange{Pct: 20}))
	require.Len(t, writer.pricing, 2)
	assert.Equal(t, 20.0, writer.pricing[1].Pct)
}

func TestSetPricingRejectsNonPositiveFixedAmount(t *testing.T) {
	writer := &stubWriter{}
	d, selection, _ := newTestDispatcher(t, writer, nil)
	selection.Click("2025-06-05", calendar.StatusAvailable)

	assert.ErrorIs(t, d.SetPricing(context.Background(), PriceChange{Fixed: true}), calendar.ErrInvalidPrice)
	assert.Empty(t, writer.pricing)
}
