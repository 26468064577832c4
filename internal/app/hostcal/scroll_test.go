package hostcal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"carbe/internal/domain/shared/datekey"
	"carbe/internal/domain/vehicle"
)

func newTestScroller(displayed datekey.Month) *Scroller {
	cache := NewMonthCache(&stubFetcher{}, []vehicle.VehicleID{"veh-1"}, nil)
	return NewScroller(displayed, 600, cache)
}

func TestScrollerWindow(t *testing.T) {
	s := newTestScroller("2025-06")
	assert.Equal(t, [3]datekey.Month{"2025-05", "2025-06", "2025-07"}, s.Window())
	assert.Equal(t, 600.0, s.Offset())
}

func TestSampleMiddleSlideKeepsMonth(t *testing.T) {
	s := newTestScroller("2025-06")
	offset := s.Sample(context.Background(), 640)
	assert.Equal(t, 600.0, offset, "viewport snaps back to the middle slide")
	assert.Equal(t, datekey.Month("2025-06"), s.Displayed())
}

func TestSampleTopSlideShiftsBack(t *testing.T) {
	s := newTestScroller("2025-06")
	offset := s.Sample(context.Background(), 120)
	assert.Equal(t, 600.0, offset)
	assert.Equal(t, datekey.Month("2025-05"), s.Displayed())
	assert.Equal(t, [3]datekey.Month{"2025-04", "2025-05", "2025-06"}, s.Window())
}

func TestSampleBottomSlideAdvances(t *testing.T) {
	s := newTestScroller("2025-06")
	offset := s.Sample(context.Background(), 1150)
	assert.Equal(t, 600.0, offset)
	assert.Equal(t, datekey.Month("2025-07"), s.Displayed())
}

func TestSampleClampsExtremeOffsets(t *testing.T) {
	s := newTestScroller("2025-06")
	s.Sample(context.Background(), -500)
	assert.Equal(t, datekey.Month("2025-05"), s.Displayed(), "offsets below the window act like the top slide")

	s = newTestScroller("2025-06")
	s.Sample(context.Background(), 5000)
	assert.Equal(t, datekey.Month("2025-07"), s.Displayed(), "offsets beyond the window act like the bottom slide")
}

func TestNextPrevAcrossYearBoundary(t *testing.T) {
	s := newTestScroller("2024-12")
	s.Next(context.Background())
	assert.Equal(t, datekey.Month("2025-01"), s.Displayed())
	s.Prev(context.Background())
	s.Prev(context.Background())
	assert.Equal(t, datekey.Month("2024-11"), s.Displayed())
}

func TestShowJumpsToMonth(t *testing.T) {
	s := newTestScroller("2025-06")
	offset := s.Show(context.Background(), "2026-01")
	assert.Equal(t, 600.0, offset)
	assert.Equal(t, [3]datekey.Month{"2025-12", "2026-01", "2026-02"}, s.Window())
}
