package datekey

import (
	"errors"
	"fmt"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	ErrInvalidDateKey = errors.New("datekey: value must be yyyy-MM-dd")
	ErrInvalidMonth   = errors.New("datekey: value must be yyyy-MM")
)

// DateKey identifies a single calendar day as a timezone-free yyyy-MM-dd string.
// Lexicographic order on valid keys equals chronological order.
type DateKey string

func Parse(raw string) (DateKey, error) {
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, raw)
	}
	return Of(t), nil
}

// Of normalizes a point in time to its UTC calendar day.
func Of(t time.Time) DateKey {
	return DateKey(t.UTC().Format(dayLayout))
}

// Time returns midnight UTC of the day.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DateKey) AddDays(n int) DateKey {
	return Of(d.Time().AddDate(0, 0, n))
}

func (d DateKey) Before(other DateKey) bool {
	return d < other
}

func (d DateKey) Weekend() bool {
	switch d.Time().Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

func (d DateKey) Month() Month {
	return Month(d.Time().Format(monthLayout))
}

// DaysInclusive counts the days of the closed interval [a, b].
// Order of the arguments does not matter; equal keys count as one day.
func DaysInclusive(a, b DateKey) int {
	if b.Before(a) {
		a, b = b, a
	}
	return int(b.Time().Sub(a.Time()).Hours()/24) + 1
}

// RangeInclusive returns the contiguous ordered run of days covering both
// arguments, endpoints included.
func RangeInclusive(a, b DateKey) []DateKey {
	if b.Before(a) {
		a, b = b, a
	}
	run := make([]DateKey, 0, DaysInclusive(a, b))
	for d := a; !b.Before(d); d = d.AddDays(1) {
		run = append(run, d)
	}
	return run
}

// Month identifies a calendar month as a yyyy-MM string.
type Month string

func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse(monthLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
	}
	return MonthOf(t), nil
}

func MonthOf(t time.Time) Month {
	return Month(t.UTC().Format(monthLayout))
}

func (m Month) Time() time.Time {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (m Month) Prev() Month {
	return MonthOf(m.Time().AddDate(0, -1, 0))
}

func (m Month) Next() Month {
	return MonthOf(m.Time().AddDate(0, 1, 0))
}

// First returns the first day of the month.
func (m Month) First() DateKey {
	return Of(m.Time())
}

// Last returns the last day of the month.
func (m Month) Last() DateKey {
	return Of(m.Time().AddDate(0, 1, -1))
}

func (m Month) Contains(d DateKey) bool {
	return d.Month() == m
}
