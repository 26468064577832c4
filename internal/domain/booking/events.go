package booking

import (
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/shared/events"
	"carbe/internal/domain/vehicle"
)

type BookingRequested struct {
	events.Base
	VehicleID vehicle.VehicleID `json:"vehicle_id"`
	Start     datekey.DateKey   `json:"start"`
	End       datekey.DateKey   `json:"end"`
}

type BookingConfirmed struct {
	events.Base
	VehicleID vehicle.VehicleID `json:"vehicle_id"`
	Start     datekey.DateKey   `json:"start"`
	End       datekey.DateKey   `json:"end"`
}

type BookingCancelled struct {
	events.Base
	VehicleID vehicle.VehicleID `json:"vehicle_id"`
	Reason    string            `json:"reason"`
}
