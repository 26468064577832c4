package hostcal

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

var (
	// ErrSelectionSuperseded marks a fetch whose vehicle set changed while it
	// was in flight; the response is discarded, never cached.
	ErrSelectionSuperseded = errors.New("hostcal: vehicle selection changed during fetch")
	ErrNoVehicles          = errors.New("hostcal: no vehicles selected")
)

// Fetcher loads one month snapshot for a vehicle set.
type Fetcher interface {
	FetchMonth(ctx context.Context, m datekey.Month, vehicles []vehicle.VehicleID) (*calendar.MonthData, error)
}

// MonthCache keys month snapshots by (month, sorted vehicle set). Entries are
// never evicted except when the vehicle set changes, so a month that loaded
// once keeps rendering without a loading placeholder. Failed fetches leave no
// entry behind and stay retryable.
type MonthCache struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu       sync.Mutex
	vehicles []vehicle.VehicleID
	setKey   string
	entries  map[datekey.Month]*calendar.MonthData
	inflight map[datekey.Month]chan struct{}
}

func NewMonthCache(fetcher Fetcher, vehicles []vehicle.VehicleID, logger *slog.Logger) *MonthCache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &MonthCache{
		fetcher:  fetcher,
		logger:   logger,
		entries:  make(map[datekey.Month]*calendar.MonthData),
		inflight: make(map[datekey.Month]chan struct{}),
	}
	c.setVehiclesLocked(vehicles)
	return c
}

// SetVehicles switches the vehicle selection. A changed set drops every
// cached month and orphans in-flight fetches of the old key.
func (c *MonthCache) SetVehicles(vehicles []vehicle.VehicleID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.setKey
	c.setVehiclesLocked(vehicles)
	if c.setKey != old {
		c.entries = make(map[datekey.Month]*calendar.MonthData)
		c.inflight = make(map[datekey.Month]chan struct{})
	}
}

func (c *MonthCache) setVehiclesLocked(vehicles []vehicle.VehicleID) {
	dedup := make(map[vehicle.VehicleID]struct{}, len(vehicles))
	sorted := make([]vehicle.VehicleID, 0, len(vehicles))
	for _, v := range vehicles {
		if _, ok := dedup[v]; ok {
			continue
		}
		dedup[v] = struct{}{}
		sorted = append(sorted, v)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	c.vehicles = sorted
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = string(v)
	}
	c.setKey = strings.Join(parts, ",")
}

// Vehicles returns the current sorted vehicle selection.
func (c *MonthCache) Vehicles() []vehicle.VehicleID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]vehicle.VehicleID, len(c.vehicles))
	copy(out, c.vehicles)
	return out
}

// Get returns the cached snapshot without fetching.
func (c *MonthCache) Get(m datekey.Month) (*calendar.MonthData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[m]
	return data, ok
}

// Ensure returns the snapshot for the month, fetching at most once per
// (month, vehicle set). Concurrent callers of the same month share one fetch.
// A response arriving after the vehicle set changed is discarded.
func (c *MonthCache) Ensure(ctx context.Context, m datekey.Month) (*calendar.MonthData, error) {
	for {
		c.mu.Lock()
		if len(c.vehicles) == 0 {
			c.mu.Unlock()
			return nil, ErrNoVehicles
		}
		if data, ok := c.entries[m]; ok {
			c.mu.Unlock()
			return data, nil
		}
		if done, ok := c.inflight[m]; ok {
			c.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		done := make(chan struct{})
		c.inflight[m] = done
		key := c.setKey
		vehicles := make([]vehicle.VehicleID, len(c.vehicles))
		copy(vehicles, c.vehicles)
		c.mu.Unlock()

		data, err := c.fetcher.FetchMonth(ctx, m, vehicles)

		c.mu.Lock()
		if c.setKey != key {
			// Stale vehicle set; someone reset inflight already.
			c.mu.Unlock()
			close(done)
			if err != nil {
				return nil, err
			}
			return nil, ErrSelectionSuperseded
		}
		delete(c.inflight, m)
		if err == nil {
			c.entries[m] = data
		}
		c.mu.Unlock()
		close(done)
		return data, err
	}
}

// EnsureWindow loads the displayed month synchronously and prefetches the two
// adjacent months in the background.
func (c *MonthCache) EnsureWindow(ctx context.Context, m datekey.Month) (*calendar.MonthData, error) {
	data, err := c.Ensure(ctx, m)
	if err != nil {
		return nil, err
	}
	c.Prefetch(ctx, m.Prev(), m.Next())
	return data, nil
}

// Prefetch warms months without blocking; failures are logged and retried by
// the next Ensure.
func (c *MonthCache) Prefetch(ctx context.Context, months ...datekey.Month) {
	for _, m := range months {
		go func(m datekey.Month) {
			if _, err := c.Ensure(ctx, m); err != nil && !errors.Is(err, ErrSelectionSuperseded) {
				c.logger.Warn("calendar prefetch failed", "month", m, "error", err)
			}
		}(m)
	}
}

// Invalidate drops the given months so the next Ensure refetches them.
// Bulk mutations call this for every affected month.
func (c *MonthCache) Invalidate(months ...datekey.Month) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range months {
		delete(c.entries, m)
	}
}
