package dto

import "carbe/internal/domain/vehicle"

type VehicleSummary struct {
	ID             string `json:"id"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Seats          int    `json:"seats"`
	Transmission   string `json:"transmission"`
	FuelType       string `json:"fuel_type"`
	City           string `json:"city"`
	BasePriceCents int64  `json:"base_price_cents"`
	PhotoURL       string `json:"photo_url"`
}

type VehicleCatalog struct {
	Items  []VehicleSummary `json:"items"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func MapVehicleSummary(v *vehicle.Vehicle) VehicleSummary {
	if v == nil {
		return VehicleSummary{}
	}
	return VehicleSummary{
		ID:             string(v.ID),
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Seats:          v.Seats,
		Transmission:   v.Transmission,
		FuelType:       v.FuelType,
		City:           v.City,
		BasePriceCents: v.BasePriceCents,
		PhotoURL:       v.PhotoURL,
	}
}

func MapVehicleCatalog(items []*vehicle.Vehicle, limit, offset int) VehicleCatalog {
	out := VehicleCatalog{Items: make([]VehicleSummary, 0, len(items)), Limit: limit, Offset: offset}
	for _, v := range items {
		out.Items = append(out.Items, MapVehicleSummary(v))
	}
	return out
}
