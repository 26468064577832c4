package hostcal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
)

func TestClickTogglesSingleDate(t *testing.T) {
	s := NewSelection()
	assert.True(t, s.IsEmpty())

	s.Click("2025-06-05", calendar.StatusAvailable)
	assert.Equal(t, SelectionSingle, s.Phase())
	assert.Equal(t, []datekey.DateKey{"2025-06-05"}, s.Dates())

	// re-clicking the anchor deselects
	s.Click("2025-06-05", calendar.StatusAvailable)
	assert.True(t, s.IsEmpty())
	assert.Empty(t, s.Dates())
}

func TestClickFillsRangeInclusive(t *testing.T) {
	s := NewSelection()
	s.Click("2025-06-05", calendar.StatusAvailable)
	s.Click("2025-06-08", calendar.StatusAvailable)

	require.Equal(t, SelectionRange, s.Phase())
	dates := s.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, []datekey.DateKey{"2025-06-05", "2025-06-06", "2025-06-07", "2025-06-08"}, dates)
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDays(1), dates[i], "selection must stay contiguous")
	}
}

func TestClickBackwardsRange(t *testing.T) {
	s := NewSelection()
	s.Click("2025-06-08", calendar.StatusAvailable)
	s.Click("2025-06-05", calendar.StatusAvailable)

	dates := s.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, datekey.DateKey("2025-06-05"), dates[0], "range is ordered regardless of click order")
}

func TestClickAfterRangeRestartsSingle(t *testing.T) {
	s := NewSelection()
	s.Click("2025-06-05", calendar.StatusAvailable)
	s.Click("2025-06-08", calendar.StatusAvailable)
	s.Click("2025-06-20", calendar.StatusAvailable)

	assert.Equal(t, SelectionSingle, s.Phase())
	assert.Equal(t, []datekey.DateKey{"2025-06-20"}, s.Dates())
}

func TestClickOnBookedDateIsNoOp(t *testing.T) {
	s := NewSelection()
	s.Click("2025-06-05", calendar.StatusBooked)
	assert.True(t, s.IsEmpty())

	s.Click("2025-06-05", calendar.StatusAvailable)
	s.Click("2025-06-06", calendar.StatusPending)
	assert.Equal(t, SelectionSingle, s.Phase(), "pending dates cannot extend the selection")
	assert.Equal(t, []datekey.DateKey{"2025-06-05"}, s.Dates())
}

func TestRangeMayCrossMonthBoundary(t *testing.T) {
	s := NewSelection()
	s.Click("2025-06-29", calendar.StatusAvailable)
	s.Click("2025-07-02", calendar.StatusAvailable)

	dates := s.Dates()
	require.Len(t, dates, 4)
	assert.Equal(t, datekey.DateKey("2025-06-29"), dates[0])
	assert.Equal(t, datekey.DateKey("2025-07-02"), dates[3])
}

func TestContains(t *testing.T) {
	s := NewSelection()
	assert.False(t, s.Contains("2025-06-06"))

	s.Click("2025-06-05", calendar.StatusAvailable)
	s.Click("2025-06-08", calendar.StatusAvailable)
	assert.True(t, s.Contains("2025-06-06"))
	assert.True(t, s.Contains("2025-06-08"))
	assert.False(t, s.Contains("2025-06-09"))
}
