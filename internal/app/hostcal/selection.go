package hostcal

import (
	"carbe/internal/domain/calendar"
	"carbe/internal/domain/shared/datekey"
)

// SelectionPhase names the state of the in-progress range selection.
type SelectionPhase string

const (
	SelectionEmpty  SelectionPhase = "empty"
	SelectionSingle SelectionPhase = "single"
	SelectionRange  SelectionPhase = "range"
)

// Selection tracks the host's current bulk-edit target. It is always empty,
// a single date, or a contiguous inclusive run, because a range is always
// filled between the anchor and the most recent click.
type Selection struct {
	phase  SelectionPhase
	anchor datekey.DateKey
	dates  []datekey.DateKey
}

func NewSelection() *Selection {
	return &Selection{phase: SelectionEmpty}
}

// Click feeds one date-click event into the machine. status is the derived
// day status under the current vehicle selection; clicking a day held by a
// booking is a deliberate no-op, not an error.
func (s *Selection) Click(d datekey.DateKey, status calendar.DayStatus) {
	if !status.Editable() {
		return
	}
	switch s.phase {
	case SelectionEmpty:
		s.phase = SelectionSingle
		s.anchor = d
		s.dates = []datekey.DateKey{d}
	case SelectionSingle:
		if d == s.anchor {
			s.Clear()
			return
		}
		s.phase = SelectionRange
		s.dates = datekey.RangeInclusive(s.anchor, d)
	case SelectionRange:
		s.phase = SelectionSingle
		s.anchor = d
		s.dates = []datekey.DateKey{d}
	}
}

func (s *Selection) Clear() {
	s.phase = SelectionEmpty
	s.anchor = ""
	s.dates = nil
}

func (s *Selection) Phase() SelectionPhase {
	return s.phase
}

func (s *Selection) IsEmpty() bool {
	return s.phase == SelectionEmpty
}

// Dates returns the ordered selected run.
func (s *Selection) Dates() []datekey.DateKey {
	out := make([]datekey.DateKey, len(s.dates))
	copy(out, s.dates)
	return out
}

// Contains reports whether d is part of the current selection.
func (s *Selection) Contains(d datekey.DateKey) bool {
	if s.phase == SelectionEmpty {
		return false
	}
	first, last := s.dates[0], s.dates[len(s.dates)-1]
	return !d.Before(first) && !last.Before(d)
}
