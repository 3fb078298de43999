package reflow

import (
	"time"

	"github.com/compozy/reflow/engine/core"
)

// MaintenanceWindow is an interval attached to a work center during which it
// cannot be used.
type MaintenanceWindow struct {
	Interval Interval
	Reason   string
}

// WorkCenter is a capacity-one resource: it executes at most one work order
// at a time. Shifts and maintenance windows are read-only throughout a
// reflow call (§9 Ownership).
type WorkCenter struct {
	ID                 core.ID
	Name               string
	Shifts             []Shift
	MaintenanceWindows []MaintenanceWindow
}

// WorkOrder is a unit of production work. If IsMaintenance is true the work
// order is immovable: its Start/End are authoritative and treated as a
// reservation on its work center, never moved by the engine.
type WorkOrder struct {
	ID              core.ID
	Number          string
	WorkCenterID    core.ID
	Start           time.Time
	End             time.Time
	DurationMinutes int
	IsMaintenance   bool
	DependsOn       []core.ID
}

// Interval returns the work order's current planned/scheduled interval.
func (w *WorkOrder) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// ChangeRecord documents a single work order's move, with the reasons that
// contributed to it (deduplicated, first occurrence preserved).
type ChangeRecord struct {
	WorkOrderID      core.ID
	WorkOrderNumber  string
	WorkCenterID     core.ID
	OriginalInterval Interval
	NewInterval      Interval
	DeltaStartMin    int
	DeltaEndMin      int
	Reasons          []string
}

// Result is the output of a reflow call (§6).
type Result struct {
	UpdatedWorkOrders []*WorkOrder
	Changes           []ChangeRecord
	Explanation       []string
}

// Input bundles a reflow call's arguments: the existing schedule, the work
// centers it runs on, and (optional, carried through untouched) manufacturing
// orders the core never consults.
type Input struct {
	WorkOrders          []*WorkOrder
	WorkCenters         []*WorkCenter
	ManufacturingOrders []any
}

func minutesBetween(a, b time.Time) int {
	return int(b.Sub(a).Minutes())
}

func dedupeReasons(reasons []string) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
