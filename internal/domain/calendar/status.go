package calendar

import "errors"

var (
	ErrDateBooked        = errors.New("calendar: date is taken by a booking")
	ErrStatusNotSettable = errors.New("calendar: only available and blocked can be set by the host")
	ErrNoTargets         = errors.New("calendar: at least one vehicle and one date required")
	ErrInvalidPrice      = errors.New("calendar: price must be positive")
)

// DayStatus is the derived per-vehicle per-day state shown on the host grid.
// booked and pending come from booking records and are never written directly;
// available and blocked are host-settable flags.
type DayStatus string

const (
	StatusAvailable DayStatus = "available"
	StatusBlocked   DayStatus = "blocked"
	StatusPending   DayStatus = "pending"
	StatusBooked    DayStatus = "booked"
)

// Settable reports whether a host may write this status as a day flag.
func (s DayStatus) Settable() bool {
	return s == StatusAvailable || s == StatusBlocked
}

// Editable reports whether a day with this derived status may be targeted by
// a bulk edit. Days held by a booking, pending included, are off limits.
func (s DayStatus) Editable() bool {
	return s.Settable()
}
