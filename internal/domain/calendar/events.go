package calendar

import (
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/shared/events"
	"carbe/internal/domain/vehicle"
)

type AvailabilityChanged struct {
	events.Base
	VehicleIDs []vehicle.VehicleID `json:"vehicle_ids"`
	Dates      []datekey.DateKey   `json:"dates"`
	Flag       DayStatus           `json:"flag"`
}

type PricingChanged struct {
	events.Base
	VehicleIDs []vehicle.VehicleID         `json:"vehicle_ids"`
	Dates      []datekey.DateKey           `json:"dates"`
	PriceCents map[vehicle.VehicleID]int64 `json:"price_cents"`
}
