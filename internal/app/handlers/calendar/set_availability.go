package calendar

import (
	"context"
	"errors"
	"strings"
	"time"

	"carbe/internal/app/outbox"
	"carbe/internal/app/uow"
	domaincalendar "carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/shared/events"
	domainvehicle "carbe/internal/domain/vehicle"
)

const setAvailabilityKey = "calendar.set_availability"

var ErrUnitOfWorkRequired = errors.New("calendar: unit of work required")

// SetAvailabilityCommand flips the host flag for every (vehicle, date) pair in
// one shot. The write is rejected wholesale when any target date is held by a
// booking.
type SetAvailabilityCommand struct {
	HostID          string
	Dates           []string
	VehicleIDs      []string
	Value           string
	IdempotencyKeyV string
}

func (c SetAvailabilityCommand) Key() string { return setAvailabilityKey }

func (c SetAvailabilityCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SetAvailabilityCommand) ResultPrototype() any { return &BulkWriteResult{} }

func (c SetAvailabilityCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if len(c.Dates) == 0 || len(c.VehicleIDs) == 0 {
		return domaincalendar.ErrNoTargets
	}
	if !domaincalendar.DayStatus(c.Value).Settable() {
		return domaincalendar.ErrStatusNotSettable
	}
	for _, raw := range c.Dates {
		if _, err := datekey.Parse(raw); err != nil {
			return err
		}
	}
	return nil
}

// BulkWriteResult reports what a bulk calendar write touched.
type BulkWriteResult struct {
	Pairs  int      `json:"pairs"`
	Months []string `json:"months"`
}

type SetAvailabilityHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*BulkWriteResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dates, months, err := parseDates(cmd.Dates)
	if err != nil {
		return nil, err
	}
	vehicles, err := resolveHostVehicles(ctx, unit, domainvehicle.HostID(cmd.HostID), cmd.VehicleIDs)
	if err != nil {
		return nil, err
	}
	ids := vehicleIDs(vehicles)

	if err := rejectBookedTargets(ctx, unit, months, ids, dates); err != nil {
		return nil, err
	}

	flag := domaincalendar.DayStatus(cmd.Value)
	if err := unit.Calendar().SetFlags(ctx, dates, ids, flag); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev := domaincalendar.AvailabilityChanged{
		Base:       events.Base{Name: "calendar.availability_changed", Aggregate: cmd.HostID, Time: now},
		VehicleIDs: ids,
		Dates:      dates,
		Flag:       flag,
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &BulkWriteResult{Pairs: len(dates) * len(ids), Months: monthStrings(months)}, nil
}

// beginUnit reuses a unit from context (the transaction middleware path) or
// opens one the handler manages itself.
func beginUnit(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, false, err
	}
	return unit, uow.ContextWithUnitOfWork(ctx, unit), true, nil
}

func parseDates(raw []string) ([]datekey.DateKey, []datekey.Month, error) {
	dates := make([]datekey.DateKey, 0, len(raw))
	seen := make(map[datekey.Month]struct{})
	var months []datekey.Month
	for _, r := range raw {
		d, err := datekey.Parse(r)
		if err != nil {
			return nil, nil, err
		}
		dates = append(dates, d)
		if _, ok := seen[d.Month()]; !ok {
			seen[d.Month()] = struct{}{}
			months = append(months, d.Month())
		}
	}
	return dates, months, nil
}

func vehicleIDs(vehicles []*domainvehicle.Vehicle) []domainvehicle.VehicleID {
	ids := make([]domainvehicle.VehicleID, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}
	return ids
}

func monthStrings(months []datekey.Month) []string {
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, string(m))
	}
	return out
}

// rejectBookedTargets fails the whole write if any (vehicle, date) target is
// covered by a booking that still blocks its span.
func rejectBookedTargets(ctx context.Context, unit uow.UnitOfWork, months []datekey.Month, ids []domainvehicle.VehicleID, dates []datekey.DateKey) error {
	for _, m := range months {
		bookings, err := unit.Bookings().OverlappingMonth(ctx, m, ids)
		if err != nil {
			return err
		}
		for _, b := range bookings {
			if !b.Blocks() {
				continue
			}
			for _, d := range dates {
				if b.Covers(d) {
					return domaincalendar.ErrDateBooked
				}
			}
		}
	}
	return nil
}
