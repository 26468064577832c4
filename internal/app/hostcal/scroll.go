package hostcal

import (
	"context"
	"math"
	"sync"

	"carbe/internal/domain/shared/datekey"
)

// Scroller maps a vertically snapping 3-slide viewport (previous, displayed,
// next month) to the displayed month. Scroll offsets are fed in through
// Sample at whatever debounce cadence the caller uses; the scroller itself is
// deterministic.
type Scroller struct {
	cache       *MonthCache
	slideHeight float64

	mu        sync.Mutex
	displayed datekey.Month
}

func NewScroller(displayed datekey.Month, slideHeight float64, cache *MonthCache) *Scroller {
	return &Scroller{cache: cache, slideHeight: slideHeight, displayed: displayed}
}

// Displayed returns the month the middle slide currently shows.
func (s *Scroller) Displayed() datekey.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayed
}

// Window returns the three slide months in order.
func (s *Scroller) Window() [3]datekey.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return [3]datekey.Month{s.displayed.Prev(), s.displayed, s.displayed.Next()}
}

// Offset returns the resting scroll position: the middle slide.
func (s *Scroller) Offset() float64 {
	return s.slideHeight
}

// Sample maps a sampled scroll offset to the nearest slide. Landing on the
// top or bottom slide shifts the window by one month, triggers the cache for
// the newly adjacent month and snaps back to the middle slide. The returned
// offset is where the viewport must be placed so grid and position never
// disagree.
func (s *Scroller) Sample(ctx context.Context, offset float64) float64 {
	idx := int(math.Round(offset / s.slideHeight))
	if idx < 0 {
		idx = 0
	}
	if idx > 2 {
		idx = 2
	}
	if idx == 1 {
		return s.slideHeight
	}

	s.mu.Lock()
	switch idx {
	case 0:
		s.displayed = s.displayed.Prev()
	case 2:
		s.displayed = s.displayed.Next()
	}
	displayed := s.displayed
	s.mu.Unlock()

	if s.cache != nil {
		// Fetch failures surface through the banner path; the slide shift
		// itself is never rolled back.
		_, _ = s.cache.EnsureWindow(ctx, displayed)
	}
	return s.slideHeight
}

// Next advances one month programmatically, snapping without animation.
func (s *Scroller) Next(ctx context.Context) float64 {
	return s.Sample(ctx, 2*s.slideHeight)
}

// Prev goes back one month programmatically, snapping without animation.
func (s *Scroller) Prev(ctx context.Context) float64 {
	return s.Sample(ctx, 0)
}

// Show jumps straight to a month (e.g. a date picker), resetting the window.
func (s *Scroller) Show(ctx context.Context, m datekey.Month) float64 {
	s.mu.Lock()
	s.displayed = m
	s.mu.Unlock()
	if s.cache != nil {
		_, _ = s.cache.EnsureWindow(ctx, m)
	}
	return s.slideHeight
}
