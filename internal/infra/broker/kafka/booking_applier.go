package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"carbe/internal/app/uow"
	domainbooking "carbe/internal/domain/booking"
	"carbe/internal/domain/shared/datekey"
	domainvehicle "carbe/internal/domain/vehicle"
)

// Deduper skips events that were already applied.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// BookingApplier projects booking lifecycle events from the booking flow into
// the local read model the calendar derives day states from.
type BookingApplier struct {
	Factory uow.Factory
	Deduper Deduper
	Logger  *slog.Logger
}

var ErrApplierNotConfigured = errors.New("kafka: booking applier missing unit of work factory")

type envelope struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Time time.Time        `json:"time"`
	Data bookingEventData `json:"data"`
}

type bookingEventData struct {
	BookingID      string `json:"booking_id"`
	VehicleID      string `json:"vehicle_id"`
	GuestID        string `json:"guest_id"`
	GuestName      string `json:"guest_name"`
	Start          string `json:"start"`
	End            string `json:"end"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	Reason         string `json:"reason"`
}

func (a *BookingApplier) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if a.Factory == nil {
		return ErrApplierNotConfigured
	}
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// malformed message, skip instead of blocking the partition
		a.log().WarnContext(ctx, "booking event decode failed", slog.String("err", err.Error()))
		return nil
	}
	if a.Deduper != nil && env.ID != "" {
		seen, err := a.Deduper.Seen(ctx, env.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	switch env.Type {
	case "booking.requested.v1", "booking.confirmed.v1", "booking.cancelled.v1", "booking.completed.v1":
	default:
		return nil
	}
	return a.apply(ctx, env)
}

func (a *BookingApplier) apply(ctx context.Context, env envelope) error {
	unit, err := a.Factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	execCtx := uow.ContextWithUnitOfWork(ctx, unit)
	if injector, ok := unit.(interface {
		InjectContext(ctx context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(execCtx)
	}

	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(env.Data.BookingID))
	switch {
	case err == nil:
	case errors.Is(err, domainbooking.ErrNotFound):
		b, err = newBookingFromEvent(env)
		if err != nil {
			a.log().WarnContext(ctx, "booking event rejected", slog.String("event_id", env.ID), slog.String("err", err.Error()))
			return nil
		}
	default:
		return err
	}

	ts := env.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	switch env.Type {
	case "booking.confirmed.v1":
		if err := b.Confirm(ts); err != nil && !errors.Is(err, domainbooking.ErrInvalidState) {
			return err
		}
	case "booking.cancelled.v1":
		if err := b.Cancel(env.Data.Reason, ts); err != nil && !errors.Is(err, domainbooking.ErrInvalidState) {
			return err
		}
	case "booking.completed.v1":
		if err := b.Complete(ts); err != nil && !errors.Is(err, domainbooking.ErrInvalidState) {
			return err
		}
	}
	b.Clear()
	if err := unit.Bookings().Save(execCtx, b); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func newBookingFromEvent(env envelope) (*domainbooking.Booking, error) {
	start, err := datekey.Parse(env.Data.Start)
	if err != nil {
		return nil, err
	}
	end, err := datekey.Parse(env.Data.End)
	if err != nil {
		return nil, err
	}
	guestID := env.Data.GuestID
	if guestID == "" {
		guestID = "unknown"
	}
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:             domainbooking.BookingID(env.Data.BookingID),
		VehicleID:      domainvehicle.VehicleID(env.Data.VehicleID),
		GuestID:        guestID,
		GuestName:      env.Data.GuestName,
		Start:          start,
		End:            end,
		DailyRateCents: env.Data.DailyRateCents,
		Now:            env.Time,
	})
	if err != nil {
		return nil, err
	}
	b.Clear()
	return b, nil
}

func (a *BookingApplier) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

var _ MessageHandler = (*BookingApplier)(nil)
