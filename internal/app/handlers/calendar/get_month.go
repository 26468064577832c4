package calendar

import (
	"context"
	"errors"
	"strings"

	"carbe/internal/app/dto"
	"carbe/internal/app/handlers/support"
	"carbe/internal/app/queries"
	"carbe/internal/app/uow"
	domaincalendar "carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	domainvehicle "carbe/internal/domain/vehicle"
)

const getMonthKey = "calendar.month"

var (
	ErrHostRequired    = errors.New("calendar: host id is required")
	ErrVehicleNotOwned = errors.New("calendar: vehicle does not belong to host")
)

// GetMonthQuery loads the calendar snapshot for one month and a host's
// vehicle selection. An empty VehicleIDs slice means every vehicle of the host.
type GetMonthQuery struct {
	HostID     string
	Month      string
	VehicleIDs []string
}

func (q GetMonthQuery) Key() string { return getMonthKey }

func (q GetMonthQuery) Validate() error {
	if strings.TrimSpace(q.HostID) == "" {
		return ErrHostRequired
	}
	if _, err := datekey.ParseMonth(q.Month); err != nil {
		return err
	}
	return nil
}

// GetMonthHandler serves the month snapshot. WeekendMarkupPct is the
// configured surcharge applied to base prices on weekend days without an
// explicit override; zero disables the markup.
type GetMonthHandler struct {
	UoWFactory       uow.Factory
	WeekendMarkupPct float64
}

func (h *GetMonthHandler) Handle(ctx context.Context, q GetMonthQuery) (dto.CalendarMonth, error) {
	var zero dto.CalendarMonth
	if err := q.Validate(); err != nil {
		return zero, err
	}
	month, err := datekey.ParseMonth(q.Month)
	if err != nil {
		return zero, err
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	vehicles, err := resolveHostVehicles(execCtx, unit, domainvehicle.HostID(q.HostID), q.VehicleIDs)
	if err != nil {
		return zero, err
	}
	ids := make([]domainvehicle.VehicleID, 0, len(vehicles))
	basePrices := make(map[domainvehicle.VehicleID]int64, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
		basePrices[v.ID] = v.BasePriceCents
	}

	flags, err := unit.Calendar().Flags(execCtx, month, ids)
	if err != nil {
		return zero, err
	}
	overrides, err := unit.Calendar().Overrides(execCtx, month, ids)
	if err != nil {
		return zero, err
	}
	bookings, err := unit.Bookings().OverlappingMonth(execCtx, month, ids)
	if err != nil {
		return zero, err
	}

	data := &domaincalendar.MonthData{
		Month:          month,
		Flags:          flags,
		Overrides:      overrides,
		Bookings:       bookings,
		BasePriceCents: basePrices,
	}
	return dto.MapCalendarMonth(data, h.WeekendMarkupPct), nil
}

var _ queries.Handler[GetMonthQuery, dto.CalendarMonth] = (*GetMonthHandler)(nil)

// resolveHostVehicles loads the requested vehicles and enforces ownership.
// Without explicit ids, the whole fleet of the host is used.
func resolveHostVehicles(ctx context.Context, unit uow.UnitOfWork, host domainvehicle.HostID, rawIDs []string) ([]*domainvehicle.Vehicle, error) {
	if len(rawIDs) == 0 {
		return unit.Vehicles().ByHost(ctx, host)
	}
	ids := make([]domainvehicle.VehicleID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		ids = append(ids, domainvehicle.VehicleID(raw))
	}
	vehicles, err := unit.Vehicles().ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		if v.Host != host {
			return nil, ErrVehicleNotOwned
		}
	}
	return vehicles, nil
}
