package hostcal

import (
	"context"
	"log/slog"

	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

// Session is one host's calendar editing state: the month cache, the range
// selection, the bulk dispatcher and the month scroller, wired together.
type Session struct {
	Cache      *MonthCache
	Selection  *Selection
	Dispatcher *Dispatcher
	Scroller   *Scroller
}

type SessionConfig struct {
	Fetcher     Fetcher
	Writer      Writer
	Vehicles    []vehicle.VehicleID
	Displayed   datekey.Month
	SlideHeight float64
	Logger      *slog.Logger
}

func NewSession(cfg SessionConfig) *Session {
	cache := NewMonthCache(cfg.Fetcher, cfg.Vehicles, cfg.Logger)
	selection := NewSelection()
	if cfg.SlideHeight <= 0 {
		cfg.SlideHeight = 1
	}
	return &Session{
		Cache:      cache,
		Selection:  selection,
		Dispatcher: NewDispatcher(cfg.Writer, cache, selection),
		Scroller:   NewScroller(cfg.Displayed, cfg.SlideHeight, cache),
	}
}

// Open loads the initial window.
func (s *Session) Open(ctx context.Context) error {
	_, err := s.Cache.EnsureWindow(ctx, s.Scroller.Displayed())
	return err
}

// Click routes a date click through the selection machine, deriving the day
// status from the displayed month's snapshot. Clicks while a bulk edit is in
// flight, or on days not yet loaded, do nothing.
func (s *Session) Click(d datekey.DateKey) {
	if s.Dispatcher.Busy() {
		return
	}
	data, ok := s.Cache.Get(d.Month())
	if !ok {
		return
	}
	status := calendar.StatusAvailable
	for _, v := range s.Cache.Vehicles() {
		st := data.Status(v, d)
		if !st.Editable() {
			status = st
			break
		}
	}
	s.Selection.Click(d, status)
}

// SelectVehicles switches the vehicle set: cache reset, selection cleared,
// window reloaded under the new key.
func (s *Session) SelectVehicles(ctx context.Context, vehicles []vehicle.VehicleID) error {
	s.Cache.SetVehicles(vehicles)
	s.Selection.Clear()
	_, err := s.Cache.EnsureWindow(ctx, s.Scroller.Displayed())
	return err
}
