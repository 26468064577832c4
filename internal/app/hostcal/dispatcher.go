package hostcal

import (
	"context"
	"errors"
	"sync"

	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

var (
	ErrNothingSelected = errors.New("hostcal: no dates selected")
	ErrEditInFlight    = errors.New("hostcal: a bulk edit is already in flight")
)

// PriceChange is the host's pricing input: an absolute nightly amount or a
// percentage markup over each vehicle's base price.
type PriceChange struct {
	Fixed       bool
	AmountCents int64
	Pct         float64
}

// Writer performs bulk writes against the booking/pricing store. Both writes
// are all-or-nothing from the caller's viewpoint.
type Writer interface {
	WriteAvailability(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, flag calendar.DayStatus) error
	WritePricing(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID, change PriceChange) error
}

// Dispatcher turns the current selection plus an operation into one bulk
// write. While the outcome is pending further edits are blocked; on success
// the selection is cleared and affected months refetched; on failure the
// selection survives so the host can retry.
type Dispatcher struct {
	writer    Writer
	cache     *MonthCache
	selection *Selection

	mu   sync.Mutex
	busy bool
}

func NewDispatcher(writer Writer, cache *MonthCache, selection *Selection) *Dispatcher {
	return &Dispatcher{writer: writer, cache: cache, selection: selection}
}

// Busy reports whether a bulk edit is awaiting its outcome.
func (d *Dispatcher) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// SetAvailability applies the flag to every (vehicle, selected date) pair.
// Targets held by a booking reject the whole batch before any write goes out.
func (d *Dispatcher) SetAvailability(ctx context.Context, flag calendar.DayStatus) error {
	if !flag.Settable() {
		return calendar.ErrStatusNotSettable
	}
	return d.dispatch(ctx, func(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID) error {
		if err := d.rejectBooked(dates, vehicles); err != nil {
			return err
		}
		return d.writer.WriteAvailability(ctx, dates, vehicles, flag)
	})
}

// SetPricing writes a per-date override for every (vehicle, selected date) pair.
func (d *Dispatcher) SetPricing(ctx context.Context, change PriceChange) error {
	if change.Fixed && change.AmountCents <= 0 {
		return calendar.ErrInvalidPrice
	}
	return d.dispatch(ctx, func(ctx context.Context, dates []datekey.DateKey, vehicles []vehicle.VehicleID) error {
		return d.writer.WritePricing(ctx, dates, vehicles, change)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, write func(context.Context, []datekey.DateKey, []vehicle.VehicleID) error) error {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrEditInFlight
	}
	if d.selection.IsEmpty() {
		d.mu.Unlock()
		return ErrNothingSelected
	}
	d.busy = true
	dates := d.selection.Dates()
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	vehicles := d.cache.Vehicles()
	if len(vehicles) == 0 {
		return ErrNoVehicles
	}
	if err := write(ctx, dates, vehicles); err != nil {
		// Selection stays intact so the host can retry.
		return err
	}

	d.selection.Clear()
	months := affectedMonths(dates)
	d.cache.Invalidate(months...)
	d.cache.Prefetch(ctx, months...)
	return nil
}

// rejectBooked is the structural guard: with the no-op selection rule a
// booked date can only end up inside a range fill, and the store would refuse
// it anyway, so catching it here keeps the failure local and cheap.
func (d *Dispatcher) rejectBooked(dates []datekey.DateKey, vehicles []vehicle.VehicleID) error {
	for _, m := range affectedMonths(dates) {
		data, ok := d.cache.Get(m)
		if !ok {
			continue
		}
		if data.BookedAny(vehicles, datesInMonth(dates, m)) {
			return calendar.ErrDateBooked
		}
	}
	return nil
}

func affectedMonths(dates []datekey.DateKey) []datekey.Month {
	seen := make(map[datekey.Month]struct{})
	var months []datekey.Month
	for _, d := range dates {
		m := d.Month()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	return months
}

func datesInMonth(dates []datekey.DateKey, m datekey.Month) []datekey.DateKey {
	out := make([]datekey.DateKey, 0, len(dates))
	for _, d := range dates {
		if d.Month() == m {
			out = append(out, d)
		}
	}
	return out
}
