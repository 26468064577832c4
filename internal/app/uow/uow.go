package uow

import (
	"context"

	domainbooking "carbe/internal/domain/booking"
	domaincalendar "carbe/internal/domain/calendar"
	domainvehicle "carbe/internal/domain/vehicle"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Vehicles() domainvehicle.Repository
	Calendar() domaincalendar.Repository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
