package vehicle

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("vehicle: not found")
	ErrHostRequired     = errors.New("vehicle: host id required")
	ErrInvalidBasePrice = errors.New("vehicle: base nightly price must be positive")
)

type VehicleID string

type HostID string

// Vehicle is a host-owned car offered on the marketplace. The calendar
// references vehicles by id and reads their base nightly price.
type Vehicle struct {
	ID             VehicleID
	Host           HostID
	Make           string
	Model          string
	Year           int
	Seats          int
	Transmission   string
	FuelType       string
	City           string
	BasePriceCents int64
	PhotoURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Version        int64
}

type CreateParams struct {
	ID             VehicleID
	Host           HostID
	Make           string
	Model          string
	Year           int
	Seats          int
	Transmission   string
	FuelType       string
	City           string
	BasePriceCents int64
	PhotoURL       string
	Now            time.Time
}

func New(params CreateParams) (*Vehicle, error) {
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if params.BasePriceCents <= 0 {
		return nil, ErrInvalidBasePrice
	}
	now := params.Now.UTC()
	return &Vehicle{
		ID:             params.ID,
		Host:           params.Host,
		Make:           strings.TrimSpace(params.Make),
		Model:          strings.TrimSpace(params.Model),
		Year:           params.Year,
		Seats:          params.Seats,
		Transmission:   params.Transmission,
		FuelType:       params.FuelType,
		City:           params.City,
		BasePriceCents: params.BasePriceCents,
		PhotoURL:       params.PhotoURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// SetBasePrice changes the default nightly rate used when no per-date
// override exists.
func (v *Vehicle) SetBasePrice(cents int64, now time.Time) error {
	if cents <= 0 {
		return ErrInvalidBasePrice
	}
	v.BasePriceCents = cents
	v.UpdatedAt = now.UTC()
	return nil
}

type Repository interface {
	ByID(ctx context.Context, id VehicleID) (*Vehicle, error)
	ByIDs(ctx context.Context, ids []VehicleID) ([]*Vehicle, error)
	ByHost(ctx context.Context, host HostID) ([]*Vehicle, error)
	Search(ctx context.Context, params SearchParams) ([]*Vehicle, error)
	Save(ctx context.Context, v *Vehicle) error
}
