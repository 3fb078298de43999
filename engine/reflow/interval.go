package reflow

import (
	"sort"
	"time"

	"github.com/compozy/reflow/engine/core"
)

// Interval is a half-open range [Start, End) with End > Start. All
// comparisons in this package use half-open semantics: [0,10) and [10,20) do
// not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

// AsInterval constructs an Interval, rejecting end <= start.
func AsInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, core.NewError(
			errInvalidInterval(start, end),
			core.CodeInvalidInterval,
			map[string]any{"start": start, "end": end},
		)
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether a and b intersect under half-open semantics.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ReservationKind is informational once reservations are merged: every
// merged reservation is equivalently "unavailable" for placement purposes.
type ReservationKind string

const (
	ReservationMaintenanceWindow  ReservationKind = "maintenance-window"
	ReservationFixedMaintenanceWO ReservationKind = "fixed-maintenance-wo"
	ReservationScheduledWO        ReservationKind = "scheduled-wo"
)

// Reservation is an unavailable interval on a work center.
type Reservation struct {
	Interval Interval
	Kind     ReservationKind
	SourceID core.ID // optional; zero value when not applicable
}

// SortReservations returns rs sorted ascending by start time, breaking ties
// by original (insertion) order so results never depend on an unordered
// container's iteration order (§9 Determinism).
func SortReservations(rs []Reservation) []Reservation {
	out := make([]Reservation, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interval.Start.Before(out[j].Interval.Start)
	})
	return out
}

// Merge coalesces touching or overlapping reservations into spanning runs.
// Touching at an endpoint (r.Start == last.End) merges conservatively: it
// treats two adjacent unavailable blocks as one contiguous run, even when
// their kinds differ (Open Question 1 in §9 — intentional, and the duration
// calculator relies on this by treating the merged list uniformly as
// maintenance blocks).
func Merge(rs []Reservation) []Reservation {
	sorted := SortReservations(rs)
	if len(sorted) == 0 {
		return nil
	}
	merged := make([]Reservation, 0, len(sorted))
	current := sorted[0]
	for _, r := range sorted[1:] {
		if !r.Interval.Start.After(current.Interval.End) {
			if r.Interval.End.After(current.Interval.End) {
				current.Interval.End = r.Interval.End
			}
			continue
		}
		merged = append(merged, current)
		current = r
	}
	merged = append(merged, current)
	return merged
}

// FirstOverlap returns the earliest reservation in merged (assumed sorted)
// intersecting [start, end), or false if none does. It short-circuits once a
// reservation starts at or after end.
func FirstOverlap(merged []Reservation, start, end time.Time) (Reservation, bool) {
	for _, r := range merged {
		if !r.Interval.Start.Before(end) {
			break
		}
		if Overlaps(r.Interval, Interval{Start: start, End: end}) {
			return r, true
		}
	}
	return Reservation{}, false
}

// Subtract returns the ordered sub-intervals of base not covered by any
// block. blocks need not be sorted or merged; empty sub-intervals are
// discarded.
func Subtract(base Interval, blocks []Interval) []Interval {
	sortedBlocks := make([]Interval, len(blocks))
	copy(sortedBlocks, blocks)
	sort.Slice(sortedBlocks, func(i, j int) bool {
		return sortedBlocks[i].Start.Before(sortedBlocks[j].Start)
	})
	cursor := base.Start
	var out []Interval
	for _, b := range sortedBlocks {
		if !Overlaps(b, base) {
			continue
		}
		if b.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: minTime(b.Start, base.End)})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
		if !cursor.Before(base.End) {
			break
		}
	}
	if cursor.Before(base.End) {
		out = append(out, Interval{Start: cursor, End: base.End})
	}
	filtered := out[:0]
	for _, iv := range out {
		if iv.End.After(iv.Start) {
			filtered = append(filtered, iv)
		}
	}
	return filtered
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
