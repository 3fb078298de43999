package reflow

import (
	"time"

	"github.com/compozy/reflow/engine/core"
)

const (
	maxDurationSearchDaysWithMaintenance = 90
	maxDurationSearchDaysNoMaintenance   = 60
)

// endAfterWorkingMinutes computes the instant at which exactly
// durationMinutes of in-shift, non-maintenance time has elapsed since start.
// woNumber is carried only for error messages (§7).
//
// Numeric semantics (§4.3, §9 Open Question 2): each usable sub-interval's
// length is floored to whole minutes before being consumed; only the final,
// partially-consumed sub-interval contributes an exact (unfloored) remainder.
// This matches the source calculator and is preserved deliberately.
func endAfterWorkingMinutes(
	woNumber string,
	start time.Time,
	durationMinutes int,
	shifts []Shift,
	maintenanceBlocks []Interval,
) (time.Time, error) {
	if durationMinutes <= 0 {
		return start, nil
	}
	dayBudget := maxDurationSearchDaysWithMaintenance
	if len(maintenanceBlocks) == 0 {
		dayBudget = maxDurationSearchDaysNoMaintenance
	}

	cursor, err := snapToNextShiftTime(start, shifts)
	if err != nil {
		return time.Time{}, err
	}
	remaining := durationMinutes
	day := 0
	for day < dayBudget {
		dayStart := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), 0, 0, 0, 0, time.UTC)
		windows, err := shiftWindowsForDay(dayStart, shifts)
		if err != nil {
			return time.Time{}, err
		}
		for _, w := range windows {
			if w.End.Before(cursor) || w.End.Equal(cursor) {
				continue
			}
			usable := w
			if usable.Start.Before(cursor) {
				usable.Start = cursor
			}
			for _, sub := range Subtract(usable, maintenanceBlocks) {
				minutes := int(sub.End.Sub(sub.Start).Minutes())
				if minutes <= 0 {
					continue
				}
				if remaining <= minutes {
					return sub.Start.Add(time.Duration(remaining) * time.Minute), nil
				}
				remaining -= minutes
			}
		}
		day++
		next := dayStart.AddDate(0, 0, 1)
		cursor, err = snapToNextShiftTime(next, shifts)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Time{}, core.NewError(
		errUnschedulable(woNumber, start),
		core.CodeUnschedulable,
		map[string]any{"start": start, "durationMinutes": durationMinutes, "dayBudget": dayBudget},
	)
}

// EndAfterWorkingMinutes is the exported form of endAfterWorkingMinutes, used
// directly by tests and by callers outside this package that
// need to project a duration without running a full reflow.
func EndAfterWorkingMinutes(
	start time.Time,
	durationMinutes int,
	shifts []Shift,
	maintenanceBlocks []Interval,
) (time.Time, error) {
	return endAfterWorkingMinutes("", start, durationMinutes, shifts, maintenanceBlocks)
}

// WorkingMinutesBetween sums the in-shift, non-maintenance minutes within
// [start, end), used by the verify collaborator (§11.4) to independently
// check working-minutes conservation (§8 invariant 6) without depending on
// the engine's internal placement state.
func WorkingMinutesBetween(start, end time.Time, shifts []Shift, maintenanceBlocks []Interval) (int, error) {
	if !end.After(start) {
		return 0, nil
	}
	total := 0
	cursor := start
	for cursor.Before(end) {
		dayStart := time.Date(cursor.Year(), cursor.Month(), cursor.Day(), 0, 0, 0, 0, time.UTC)
		windows, err := shiftWindowsForDay(dayStart, shifts)
		if err != nil {
			return 0, err
		}
		for _, w := range windows {
			overlap := Interval{Start: maxTime(w.Start, start), End: minTime(w.End, end)}
			if !overlap.End.After(overlap.Start) {
				continue
			}
			for _, sub := range Subtract(overlap, maintenanceBlocks) {
				total += int(sub.End.Sub(sub.Start).Minutes())
			}
		}
		cursor = dayStart.AddDate(0, 0, 1)
	}
	return total, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
