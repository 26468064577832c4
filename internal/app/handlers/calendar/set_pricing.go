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

const setPricingKey = "calendar.set_pricing"

const (
	PriceTypeFixed  = "fixed"
	PriceTypeMarkup = "markup"
)

var ErrInvalidPriceSpec = errors.New("calendar: price must be a positive fixed amount or a markup percentage")

// PriceSpec is either an absolute nightly amount applied to every vehicle or
// a percentage markup on each vehicle's base price.
type PriceSpec struct {
	Type        string
	AmountCents int64
	Pct         float64
}

// SetPricingCommand writes an absolute per-date override for every
// (vehicle, date) pair as one atomic batch.
type SetPricingCommand struct {
	HostID          string
	Dates           []string
	VehicleIDs      []string
	Price           PriceSpec
	IdempotencyKeyV string
}

func (c SetPricingCommand) Key() string { return setPricingKey }

func (c SetPricingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SetPricingCommand) ResultPrototype() any { return &BulkWriteResult{} }

func (c SetPricingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return ErrHostRequired
	}
	if len(c.Dates) == 0 || len(c.VehicleIDs) == 0 {
		return domaincalendar.ErrNoTargets
	}
	switch c.Price.Type {
	case PriceTypeFixed:
		if c.Price.AmountCents <= 0 {
			return domaincalendar.ErrInvalidPrice
		}
	case PriceTypeMarkup:
		if c.Price.Pct <= -100 {
			return ErrInvalidPriceSpec
		}
	default:
		return ErrInvalidPriceSpec
	}
	for _, raw := range c.Dates {
		if _, err := datekey.Parse(raw); err != nil {
			return err
		}
	}
	return nil
}

type SetPricingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SetPricingHandler) Handle(ctx context.Context, cmd SetPricingCommand) (*BulkWriteResult, error) {
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

	prices := make(map[domainvehicle.VehicleID]int64, len(vehicles))
	for _, v := range vehicles {
		switch cmd.Price.Type {
		case PriceTypeFixed:
			prices[v.ID] = cmd.Price.AmountCents
		case PriceTypeMarkup:
			prices[v.ID] = domaincalendar.MarkupPrice(v.BasePriceCents, cmd.Price.Pct)
		}
		if prices[v.ID] <= 0 {
			return nil, domaincalendar.ErrInvalidPrice
		}
	}

	if err := unit.Calendar().SetOverrides(ctx, dates, prices); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ev := domaincalendar.PricingChanged{
		Base:       events.Base{Name: "calendar.pricing_changed", Aggregate: cmd.HostID, Time: now},
		VehicleIDs: vehicleIDs(vehicles),
		Dates:      dates,
		PriceCents: prices,
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
	return &BulkWriteResult{Pairs: len(dates) * len(prices), Months: monthStrings(months)}, nil
}
