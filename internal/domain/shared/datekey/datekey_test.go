package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, DateKey("2025-06-05"), d)

	for _, raw := range []string{"", "2025-6-5", "05-06-2025", "2025-13-01", "2025-06-32", "garbage"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidDateKey, raw)
	}
}

func TestLexicographicOrderIsChronological(t *testing.T) {
	a := DateKey("2025-09-30")
	b := DateKey("2025-10-01")
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
}

func TestDaysInclusive(t *testing.T) {
	a := DateKey("2025-06-05")
	b := DateKey("2025-06-08")
	assert.Equal(t, 4, DaysInclusive(a, b))
	assert.Equal(t, 4, DaysInclusive(b, a))
	assert.Equal(t, 1, DaysInclusive(a, a))
	// across a month boundary
	assert.Equal(t, 4, DaysInclusive(DateKey("2025-06-29"), DateKey("2025-07-02")))
}

func TestRangeInclusive(t *testing.T) {
	run := RangeInclusive(DateKey("2025-06-08"), DateKey("2025-06-05"))
	require.Len(t, run, 4)
	assert.Equal(t, DateKey("2025-06-05"), run[0])
	assert.Equal(t, DateKey("2025-06-08"), run[3])
	for i := 1; i < len(run); i++ {
		assert.Equal(t, run[i-1].AddDays(1), run[i], "run must be contiguous")
	}
}

func TestWeekend(t *testing.T) {
	assert.True(t, DateKey("2025-06-07").Weekend())  // Saturday
	assert.True(t, DateKey("2025-06-08").Weekend())  // Sunday
	assert.False(t, DateKey("2025-06-09").Weekend()) // Monday
}

func TestMonthNavigation(t *testing.T) {
	m, err := ParseMonth("2025-06")
	require.NoError(t, err)
	assert.Equal(t, Month("2025-05"), m.Prev())
	assert.Equal(t, Month("2025-07"), m.Next())
	assert.Equal(t, Month("2025-01"), Month("2024-12").Next())
	assert.Equal(t, Month("2024-12"), Month("2025-01").Prev())

	assert.Equal(t, DateKey("2025-06-01"), m.First())
	assert.Equal(t, DateKey("2025-06-30"), m.Last())
	assert.Equal(t, DateKey("2024-02-29"), Month("2024-02").Last())

	assert.True(t, m.Contains(DateKey("2025-06-15")))
	assert.False(t, m.Contains(DateKey("2025-07-01")))
}

func TestOfNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 2025-06-05 06:00 +10 is 2025-06-04 20:00 UTC
	d := Of(time.Date(2025, 6, 5, 6, 0, 0, 0, loc))
	assert.Equal(t, DateKey("2025-06-04"), d)
}

func TestMonthGrid(t *testing.T) {
	// June 2025 starts on a Sunday and ends on a Monday.
	cells := MonthGrid(Month("2025-06"))
	require.NotEmpty(t, cells)
	assert.Zero(t, len(cells)%7, "grid must consist of whole weeks")

	assert.Equal(t, DateKey("2025-05-26"), cells[0].Date, "grid starts on a Monday")
	assert.Equal(t, time.Monday, cells[0].Date.Time().Weekday())
	assert.False(t, cells[0].InMonth)

	last := cells[len(cells)-1]
	assert.Equal(t, time.Sunday, last.Date.Time().Weekday())

	inMonth := 0
	for _, cell := range cells {
		if cell.InMonth {
			inMonth++
		}
		assert.Equal(t, cell.Date.Weekend(), cell.Weekend)
	}
	assert.Equal(t, 30, inMonth)
}

func TestMonthGridMondayFirstNoLead(t *testing.T) {
	// September 2025 starts on a Monday: no leading pad.
	cells := MonthGrid(Month("2025-09"))
	assert.Equal(t, DateKey("2025-09-01"), cells[0].Date)
	assert.True(t, cells[0].InMonth)
	assert.Equal(t, 35, len(cells))
}
