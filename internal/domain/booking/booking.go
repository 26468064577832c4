package booking

import (
	"context"
	"errors"
	"time"

	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/shared/events"
	"carbe/internal/domain/vehicle"
)

var (
	ErrNotFound      = errors.New("booking: not found")
	ErrInvalidSpan   = errors.New("booking: end date must not precede start date")
	ErrInvalidState  = errors.New("booking: invalid state transition")
	ErrGuestRequired = errors.New("booking: guest id required")
)

type BookingID string

type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
)

// Booking reserves a vehicle for a contiguous inclusive run of days.
// The calendar treats bookings as read-only facts owned by the booking flow.
type Booking struct {
	ID             BookingID
	VehicleID      vehicle.VehicleID
	GuestID        string
	GuestName      string
	Start          datekey.DateKey
	End            datekey.DateKey
	State          State
	DailyRateCents int64
	TotalCents     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
	events.Recorder
}

type CreateParams struct {
	ID             BookingID
	VehicleID      vehicle.VehicleID
	GuestID        string
	GuestName      string
	Start          datekey.DateKey
	End            datekey.DateKey
	DailyRateCents int64
	Now            time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if params.End.Before(params.Start) {
		return nil, ErrInvalidSpan
	}
	now := params.Now.UTC()
	days := datekey.DaysInclusive(params.Start, params.End)
	b := &Booking{
		ID:             params.ID,
		VehicleID:      params.VehicleID,
		GuestID:        params.GuestID,
		GuestName:      params.GuestName,
		Start:          params.Start,
		End:            params.End,
		State:          StatePending,
		DailyRateCents: params.DailyRateCents,
		TotalCents:     params.DailyRateCents * int64(days),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.Record(BookingRequested{Base: events.Base{Name: "booking.requested", Aggregate: string(b.ID), Time: now}, VehicleID: b.VehicleID, Start: b.Start, End: b.End})
	return b, nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{Base: events.Base{Name: "booking.confirmed", Aggregate: string(b.ID), Time: b.UpdatedAt}, VehicleID: b.VehicleID, Start: b.Start, End: b.End})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{Base: events.Base{Name: "booking.cancelled", Aggregate: string(b.ID), Time: b.UpdatedAt}, VehicleID: b.VehicleID, Reason: reason})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	return nil
}

// Blocks reports whether the booking removes its days from host editing.
// Cancelled bookings free their span again.
func (b *Booking) Blocks() bool {
	return b.State != StateCancelled
}

// Covers reports whether d falls inside the inclusive [Start, End] span.
func (b *Booking) Covers(d datekey.DateKey) bool {
	return !d.Before(b.Start) && !b.End.Before(d)
}

// OverlapsMonth reports whether any day of the span falls in month m.
func (b *Booking) OverlapsMonth(m datekey.Month) bool {
	return !b.End.Before(m.First()) && !m.Last().Before(b.Start)
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// OverlappingMonth lists bookings of the given vehicles whose span
	// touches the month, regardless of state.
	OverlappingMonth(ctx context.Context, m datekey.Month, vehicles []vehicle.VehicleID) ([]*Booking, error)
}
