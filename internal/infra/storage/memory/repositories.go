package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "carbe/internal/domain/booking"
	domaincalendar "carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	domainvehicle "carbe/internal/domain/vehicle"
)

// VehicleRepository is an in-memory implementation for dev and tests.
type VehicleRepository struct {
	mu    sync.RWMutex
	items map[domainvehicle.VehicleID]*domainvehicle.Vehicle
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{items: make(map[domainvehicle.VehicleID]*domainvehicle.Vehicle)}
}

func (r *VehicleRepository) ByID(ctx context.Context, id domainvehicle.VehicleID) (*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, domainvehicle.ErrNotFound
	}
	return v, nil
}

func (r *VehicleRepository) ByIDs(ctx context.Context, ids []domainvehicle.VehicleID) ([]*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainvehicle.Vehicle, 0, len(ids))
	for _, id := range ids {
		v, ok := r.items[id]
		if !ok {
			return nil, domainvehicle.ErrNotFound
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *VehicleRepository) ByHost(ctx context.Context, host domainvehicle.HostID) ([]*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainvehicle.Vehicle
	for _, v := range r.items {
		if v.Host == host {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *VehicleRepository) Search(ctx context.Context, params domainvehicle.SearchParams) ([]*domainvehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainvehicle.Vehicle, 0, len(r.items))
	for _, v := range r.items {
		if opts.Host != "" && v.Host != opts.Host {
			continue
		}
		if opts.City != "" && !strings.EqualFold(v.City, opts.City) {
			continue
		}
		if opts.Query != "" && !matchQuery(v, opts.Query) {
			continue
		}
		if len(opts.Makes) > 0 && !tokenIncluded(strings.ToLower(v.Make), opts.Makes) {
			continue
		}
		if len(opts.Transmissions) > 0 && !tokenIncluded(strings.ToLower(v.Transmission), opts.Transmissions) {
			continue
		}
		if len(opts.FuelTypes) > 0 && !tokenIncluded(strings.ToLower(v.FuelType), opts.FuelTypes) {
			continue
		}
		if opts.MinSeats > 0 && v.Seats < opts.MinSeats {
			continue
		}
		if opts.PriceMinCents > 0 && v.BasePriceCents < opts.PriceMinCents {
			continue
		}
		if opts.PriceMaxCents > 0 && v.BasePriceCents > opts.PriceMaxCents {
			continue
		}
		matches = append(matches, v)
	}

	switch opts.Sort {
	case domainvehicle.SortByPriceDesc:
		sort.Slice(matches, func(i, j int) bool { return matches[i].BasePriceCents > matches[j].BasePriceCents })
	case domainvehicle.SortByNewest:
		sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].BasePriceCents < matches[j].BasePriceCents })
	}

	if opts.Offset >= len(matches) {
		return nil, nil
	}
	matches = matches[opts.Offset:]
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

func (r *VehicleRepository) Save(ctx context.Context, v *domainvehicle.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[v.ID] = v
	return nil
}

func matchQuery(v *domainvehicle.Vehicle, query string) bool {
	haystack := strings.ToLower(v.Make + " " + v.Model + " " + v.City)
	for _, field := range strings.Fields(query) {
		if !strings.Contains(haystack, field) {
			return false
		}
	}
	return true
}

func tokenIncluded(value string, tokens []string) bool {
	for _, t := range tokens {
		if value == t {
			return true
		}
	}
	return false
}

type flagKey struct {
	vehicle domainvehicle.VehicleID
	date    datekey.DateKey
}

// CalendarRepository keeps host day flags and price overrides in memory.
type CalendarRepository struct {
	mu        sync.RWMutex
	flags     map[flagKey]domaincalendar.DayStatus
	overrides map[flagKey]int64
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{
		flags:     make(map[flagKey]domaincalendar.DayStatus),
		overrides: make(map[flagKey]int64),
	}
}

func (r *CalendarRepository) Flags(ctx context.Context, m datekey.Month, vehicles []domainvehicle.VehicleID) (map[domainvehicle.VehicleID]map[datekey.DateKey]domaincalendar.DayStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainvehicle.VehicleID]map[datekey.DateKey]domaincalendar.DayStatus, len(vehicles))
	for key, flag := range r.flags {
		if !m.Contains(key.date) || !vehicleIncluded(key.vehicle, vehicles) {
			continue
		}
		days, ok := out[key.vehicle]
		if !ok {
			days = make(map[datekey.DateKey]domaincalendar.DayStatus)
			out[key.vehicle] = days
		}
		days[key.date] = flag
	}
	return out, nil
}

func (r *CalendarRepository) Overrides(ctx context.Context, m datekey.Month, vehicles []domainvehicle.VehicleID) (map[domainvehicle.VehicleID]map[datekey.DateKey]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domainvehicle.VehicleID]map[datekey.DateKey]int64, len(vehicles))
	for key, price := range r.overrides {
		if !m.Contains(key.date) || !vehicleIncluded(key.vehicle, vehicles) {
			continue
		}
		days, ok := out[key.vehicle]
		if !ok {
			days = make(map[datekey.DateKey]int64)
			out[key.vehicle] = days
		}
		days[key.date] = price
	}
	return out, nil
}

func (r *CalendarRepository) SetFlags(ctx context.Context, dates []datekey.DateKey, vehicles []domainvehicle.VehicleID, flag domaincalendar.DayStatus) error {
	if !flag.Settable() {
		return domaincalendar.ErrStatusNotSettable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vehicles {
		for _, d := range dates {
			r.flags[flagKey{vehicle: v, date: d}] = flag
		}
	}
	return nil
}

func (r *CalendarRepository) SetOverrides(ctx context.Context, dates []datekey.DateKey, prices map[domainvehicle.VehicleID]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for v, price := range prices {
		if price <= 0 {
			return domaincalendar.ErrInvalidPrice
		}
		for _, d := range dates {
			r.overrides[flagKey{vehicle: v, date: d}] = price
		}
	}
	return nil
}

func vehicleIncluded(id domainvehicle.VehicleID, ids []domainvehicle.VehicleID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// BookingRepository is an in-memory booking read model.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) OverlappingMonth(ctx context.Context, m datekey.Month, vehicles []domainvehicle.VehicleID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if !vehicleIncluded(b.VehicleID, vehicles) {
			continue
		}
		if b.OverlapsMonth(m) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}
