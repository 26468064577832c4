package memory

import (
	"context"
	"errors"

	"carbe/internal/app/uow"
	domainbooking "carbe/internal/domain/booking"
	domaincalendar "carbe/internal/domain/calendar"
	domainvehicle "carbe/internal/domain/vehicle"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	VehicleRepo  domainvehicle.Repository
	CalendarRepo domaincalendar.Repository
	BookingRepo  domainbooking.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.VehicleRepo == nil || f.CalendarRepo == nil || f.BookingRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		vehicles: f.VehicleRepo,
		calendar: f.CalendarRepo,
		bookings: f.BookingRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	vehicles domainvehicle.Repository
	calendar domaincalendar.Repository
	bookings domainbooking.Repository
}

func (u *Unit) Vehicles() domainvehicle.Repository {
	return u.vehicles
}

func (u *Unit) Calendar() domaincalendar.Repository {
	return u.calendar
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
