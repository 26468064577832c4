package datekey

import "time"

// GridCell is one day cell of a rendered month grid.
type GridCell struct {
	Date    DateKey
	Day     int
	InMonth bool
	Weekend bool
}

// MonthGrid produces the ordered cells of a Monday-start grid covering the
// month, padded with leading and trailing days of the adjacent months so the
// grid is made of whole weeks. The result length is always a multiple of 7.
func MonthGrid(m Month) []GridCell {
	first := m.First().Time()
	last := m.Last().Time()

	// Weekday with Monday mapped to 0.
	lead := (int(first.Weekday()) + 6) % 7
	trail := (7 - (int(last.Weekday())+6)%7 - 1) % 7

	start := first.AddDate(0, 0, -lead)
	end := last.AddDate(0, 0, trail)

	cells := make([]GridCell, 0, int(end.Sub(start).Hours()/24)+1)
	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		d := Of(t)
		cells = append(cells, GridCell{
			Date:    d,
			Day:     t.Day(),
			InMonth: t.Month() == first.Month() && t.Year() == first.Year(),
			Weekend: t.Weekday() == time.Saturday || t.Weekday() == time.Sunday,
		})
	}
	return cells
}
