package reflow

import (
	"sort"
	"time"

	"github.com/compozy/reflow/engine/core"
)

// Shift is a recurring daily availability window keyed by day-of-week.
// DayOfWeek follows §6: 0 = Sunday through 6 = Saturday, matching
// time.Weekday's own numbering so no translation is needed against UTC
// weekdays. Overnight shifts (EndHour <= StartHour) are rejected.
type Shift struct {
	DayOfWeek int
	StartHour int
	EndHour   int
}

func (s Shift) validate() error {
	if s.EndHour <= s.StartHour {
		return core.NewError(
			errUnsupportedShift(s.DayOfWeek, s.StartHour, s.EndHour),
			core.CodeUnsupportedShift,
			map[string]any{"dayOfWeek": s.DayOfWeek, "startHour": s.StartHour, "endHour": s.EndHour},
		)
	}
	return nil
}

// shiftWindowsForDay returns the concrete intervals of every shift whose
// DayOfWeek matches the UTC weekday of dayStart, in ascending start order.
// Shift windows are built by setting hour = StartHour/EndHour on dayStart's
// calendar day.
func shiftWindowsForDay(dayStart time.Time, shifts []Shift) ([]Interval, error) {
	weekday := int(dayStart.Weekday())
	year, month, day := dayStart.Date()
	var windows []Interval
	for _, s := range shifts {
		if s.DayOfWeek != weekday {
			continue
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		start := time.Date(year, month, day, s.StartHour, 0, 0, 0, time.UTC)
		end := time.Date(year, month, day, s.EndHour, 0, 0, 0, time.UTC)
		windows = append(windows, Interval{Start: start, End: end})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })
	return windows, nil
}

// ShiftWindowsForDay is the exported form of shiftWindowsForDay, used by the
// verify collaborator (§11.4) to independently re-derive shift alignment
// without depending on the engine's internal placement state.
func ShiftWindowsForDay(dayStart time.Time, shifts []Shift) ([]Interval, error) {
	return shiftWindowsForDay(dayStart, shifts)
}

// WithinShift reports whether t falls inside some shift window of shifts on
// t's own calendar day.
func WithinShift(t time.Time, shifts []Shift) (bool, error) {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	windows, err := shiftWindowsForDay(dayStart, shifts)
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if !t.Before(w.Start) && t.Before(w.End) {
			return true, nil
		}
	}
	return false, nil
}

const maxShiftSearchDays = 14

// snapToNextShiftTime returns the smallest instant >= t that lies inside some
// shift window, bounded to a 14-day search (§4.2). It fails with
// NoShiftFound when no such instant exists within the bound (e.g. shifts is
// empty — a misconfiguration).
func snapToNextShiftTime(t time.Time, shifts []Shift) (time.Time, error) {
	cursor := t
	for day := 0; day < maxShiftSearchDays; day++ {
		dayStart := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), 0, 0, 0, 0, time.UTC)
		windows, err := shiftWindowsForDay(dayStart, shifts)
		if err != nil {
			return time.Time{}, err
		}
		for _, w := range windows {
			if cursor.Before(w.Start) {
				return w.Start, nil
			}
			if !cursor.Before(w.Start) && cursor.Before(w.End) {
				return cursor, nil
			}
		}
		cursor = dayStart.AddDate(0, 0, 1)
	}
	return time.Time{}, core.NewError(errNoShiftFound(t), core.CodeNoShiftFound, map[string]any{"from": t})
}
