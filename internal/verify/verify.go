// Package verify is the post-hoc constraint checker of spec.md §1: it
// re-derives seven of the eight universal invariants of §8 against a reflow
// result, independently of and never called by the core engine. Idempotence
// (re-running reflow on its own output) is not checked. It exists so
// integration tests (and an optional CLI --verify flag) have an oracle that
// does not share code paths with the engine under test.
package verify

import (
	"fmt"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/engine/reflow"
)

// Violation describes one failed invariant.
type Violation struct {
	Invariant string
	Detail    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Invariant, v.Detail)
}

// Check re-verifies the universal invariants in spec.md §8 against result,
// given the original (pre-reflow) work orders and the work centers they run
// on: dependency ordering, no overlap, shift alignment, maintenance
// avoidance, immovable maintenance orders, no early start, and working-minutes
// conservation. It does not check idempotence. An empty return means none of
// these checks found a violation.
func Check(original []*reflow.WorkOrder, workCenters []*reflow.WorkCenter, result *reflow.Result) []Violation {
	var violations []Violation

	originalByID := make(map[core.ID]*reflow.WorkOrder, len(original))
	for _, wo := range original {
		originalByID[wo.ID] = wo
	}
	updatedByID := make(map[core.ID]*reflow.WorkOrder, len(result.UpdatedWorkOrders))
	for _, wo := range result.UpdatedWorkOrders {
		updatedByID[wo.ID] = wo
	}
	wcByID := make(map[core.ID]*reflow.WorkCenter, len(workCenters))
	for _, wc := range workCenters {
		wcByID[wc.ID] = wc
	}

	violations = append(violations, checkDependencyOrdering(updatedByID)...)
	violations = append(violations, checkNoOverlap(result.UpdatedWorkOrders)...)
	violations = append(violations, checkShiftAlignment(result.UpdatedWorkOrders, wcByID)...)
	violations = append(violations, checkMaintenanceAvoidance(result.UpdatedWorkOrders, wcByID)...)
	violations = append(violations, checkImmovableUnchanged(originalByID, result.UpdatedWorkOrders)...)
	violations = append(violations, checkNoEarlyStart(originalByID, result.UpdatedWorkOrders)...)
	violations = append(violations, checkWorkingMinutesConservation(result.UpdatedWorkOrders, wcByID)...)
	return violations
}

func checkWorkingMinutesConservation(workOrders []*reflow.WorkOrder, wcByID map[core.ID]*reflow.WorkCenter) []Violation {
	var out []Violation
	for _, wo := range workOrders {
		if wo.IsMaintenance {
			continue
		}
		wc, ok := wcByID[wo.WorkCenterID]
		if !ok {
			continue
		}
		blocks := make([]reflow.Interval, len(wc.MaintenanceWindows))
		for i, mw := range wc.MaintenanceWindows {
			blocks[i] = mw.Interval
		}
		minutes, err := reflow.WorkingMinutesBetween(wo.Start, wo.End, wc.Shifts, blocks)
		if err != nil {
			out = append(out, Violation{Invariant: "working-minutes-conservation", Detail: err.Error()})
			continue
		}
		if minutes != wo.DurationMinutes {
			out = append(out, Violation{
				Invariant: "working-minutes-conservation",
				Detail:    fmt.Sprintf("%s consumed %d working minutes, want %d", wo.Number, minutes, wo.DurationMinutes),
			})
		}
	}
	return out
}

func checkDependencyOrdering(byID map[core.ID]*reflow.WorkOrder) []Violation {
	var out []Violation
	for _, wo := range byID {
		for _, parentID := range wo.DependsOn {
			parent, ok := byID[parentID]
			if !ok {
				continue
			}
			if parent.End.After(wo.Start) {
				out = append(out, Violation{
					Invariant: "dependency-ordering",
					Detail:    fmt.Sprintf("%s starts at %s before parent %s ends at %s", wo.Number, wo.Start, parent.Number, parent.End),
				})
			}
		}
	}
	return out
}

func checkNoOverlap(workOrders []*reflow.WorkOrder) []Violation {
	var out []Violation
	byCenter := make(map[core.ID][]*reflow.WorkOrder)
	for _, wo := range workOrders {
		byCenter[wo.WorkCenterID] = append(byCenter[wo.WorkCenterID], wo)
	}
	for _, group := range byCenter {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				if reflow.Overlaps(group[i].Interval(), group[j].Interval()) {
					out = append(out, Violation{
						Invariant: "no-overlap",
						Detail:    fmt.Sprintf("%s overlaps %s on the same work center", group[i].Number, group[j].Number),
					})
				}
			}
		}
	}
	return out
}

func checkShiftAlignment(workOrders []*reflow.WorkOrder, wcByID map[core.ID]*reflow.WorkCenter) []Violation {
	var out []Violation
	for _, wo := range workOrders {
		wc, ok := wcByID[wo.WorkCenterID]
		if !ok {
			continue
		}
		within, err := reflow.WithinShift(wo.Start, wc.Shifts)
		if err != nil || !within {
			out = append(out, Violation{
				Invariant: "shift-alignment",
				Detail:    fmt.Sprintf("%s starts at %s outside every shift window of its work center", wo.Number, wo.Start),
			})
		}
	}
	return out
}

func checkMaintenanceAvoidance(workOrders []*reflow.WorkOrder, wcByID map[core.ID]*reflow.WorkCenter) []Violation {
	var out []Violation
	for _, wo := range workOrders {
		wc, ok := wcByID[wo.WorkCenterID]
		if !ok {
			continue
		}
		for _, mw := range wc.MaintenanceWindows {
			if reflow.Overlaps(wo.Interval(), mw.Interval) {
				out = append(out, Violation{
					Invariant: "maintenance-avoidance",
					Detail:    fmt.Sprintf("%s overlaps maintenance window %s", wo.Number, mw.Reason),
				})
			}
		}
	}
	return out
}

func checkImmovableUnchanged(originalByID map[core.ID]*reflow.WorkOrder, updated []*reflow.WorkOrder) []Violation {
	var out []Violation
	for _, wo := range updated {
		if !wo.IsMaintenance {
			continue
		}
		orig, ok := originalByID[wo.ID]
		if !ok {
			continue
		}
		if !wo.Start.Equal(orig.Start) || !wo.End.Equal(orig.End) {
			out = append(out, Violation{
				Invariant: "immovable-unchanged",
				Detail:    fmt.Sprintf("maintenance work order %s moved from %s-%s to %s-%s", wo.Number, orig.Start, orig.End, wo.Start, wo.End),
			})
		}
	}
	return out
}

func checkNoEarlyStart(originalByID map[core.ID]*reflow.WorkOrder, updated []*reflow.WorkOrder) []Violation {
	var out []Violation
	for _, wo := range updated {
		orig, ok := originalByID[wo.ID]
		if !ok {
			continue
		}
		if wo.Start.Before(orig.Start) {
			out = append(out, Violation{
				Invariant: "no-disruption-lower-bound",
				Detail:    fmt.Sprintf("%s moved earlier, from %s to %s", wo.Number, orig.Start, wo.Start),
			})
		}
	}
	return out
}
