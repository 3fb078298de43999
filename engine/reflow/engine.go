package reflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compozy/reflow/engine/core"
	"github.com/mohae/deepcopy"
)

const maxFeasibilityIterations = 500

// Reflow repairs an existing schedule (input) by pushing affected work orders
// forward to the earliest feasible time that satisfies every hard constraint
// (§4.5). It never reads the wall clock, performs no I/O, and is safe to call
// repeatedly from independent goroutines as long as each call owns its own
// Input (§5).
func Reflow(ctx context.Context, input Input) (*Result, error) {
	e, err := newEngine(input)
	if err != nil {
		return nil, err
	}
	order, err := e.topoOrder()
	if err != nil {
		return nil, err
	}
	e.seedReservations()
	for _, id := range order {
		wo, ok := e.woByID[id]
		if !ok {
			// Node came from a malformed edge set referencing an id outside
			// the work-order list; topoSort already ignores such edges, so
			// this only happens for nodes that were never work orders.
			continue
		}
		if wo.IsMaintenance {
			continue
		}
		if err := e.place(ctx, wo); err != nil {
			return nil, err
		}
	}
	return e.result(), nil
}

type engine struct {
	wcByID      map[core.ID]*WorkCenter
	woByID      map[core.ID]*WorkOrder
	woOrder     []core.ID // insertion order, for deterministic topo seeding
	edges       []Edge
	schedule    map[core.ID]Interval
	reservation map[core.ID][]Reservation
	changes     []ChangeRecord
}

func newEngine(input Input) (*engine, error) {
	wcByID := make(map[core.ID]*WorkCenter, len(input.WorkCenters))
	for _, wc := range input.WorkCenters {
		wcByID[wc.ID] = wc
	}

	copies := deepcopy.Copy(input.WorkOrders).([]*WorkOrder)

	woByID := make(map[core.ID]*WorkOrder, len(copies))
	woOrder := make([]core.ID, 0, len(copies))
	var edges []Edge
	for _, wo := range copies {
		if _, ok := wcByID[wo.WorkCenterID]; !ok {
			return nil, core.NewError(
				errMissingWorkCenter(wo.Number, wo.WorkCenterID.String()),
				core.CodeMissingWorkCenter,
				map[string]any{"workOrder": wo.Number, "workCenterId": wo.WorkCenterID},
			)
		}
		woByID[wo.ID] = wo
		woOrder = append(woOrder, wo.ID)
		for _, parent := range wo.DependsOn {
			edges = append(edges, Edge{Parent: parent, Child: wo.ID})
		}
	}

	return &engine{
		wcByID:      wcByID,
		woByID:      woByID,
		woOrder:     woOrder,
		edges:       edges,
		schedule:    make(map[core.ID]Interval, len(copies)),
		reservation: make(map[core.ID][]Reservation, len(wcByID)),
	}, nil
}

func (e *engine) topoOrder() ([]core.ID, error) {
	order, err := topoSort(e.woOrder, e.edges)
	if err != nil {
		return nil, e.translateCycleError(err)
	}
	return order, nil
}

// translateCycleError rewrites a CircularDependency error's residual ids
// (topoSort only ever sees opaque core.IDs) into the offending work orders'
// human-readable Number, so the message names them the way §7 requires.
func (e *engine) translateCycleError(err error) error {
	var coreErr *core.Error
	if !errors.As(err, &coreErr) || coreErr.Code != core.CodeCircularDependency {
		return err
	}
	ids, _ := coreErr.Details["residual"].([]core.ID)
	numbers := make([]string, 0, len(ids))
	for _, id := range ids {
		if wo, ok := e.woByID[id]; ok {
			numbers = append(numbers, wo.Number)
		} else {
			numbers = append(numbers, id.String())
		}
	}
	return core.NewError(
		errCircularDependency(numbers),
		core.CodeCircularDependency,
		map[string]any{"residual": numbers},
	)
}

// seedReservations builds Step C: one reservation per maintenance window and
// one per immovable (maintenance) work order, merged per work center; the
// schedule map is seeded with every immovable work order's interval.
func (e *engine) seedReservations() {
	for _, wcID := range e.workCenterOrder() {
		wc := e.wcByID[wcID]
		var rs []Reservation
		for _, mw := range wc.MaintenanceWindows {
			rs = append(rs, Reservation{Interval: mw.Interval, Kind: ReservationMaintenanceWindow})
		}
		e.reservation[wcID] = rs
	}
	for _, id := range e.woOrder {
		wo := e.woByID[id]
		if !wo.IsMaintenance {
			continue
		}
		e.reservation[wo.WorkCenterID] = append(e.reservation[wo.WorkCenterID], Reservation{
			Interval: wo.Interval(),
			Kind:     ReservationFixedMaintenanceWO,
			SourceID: wo.ID,
		})
		e.schedule[wo.ID] = wo.Interval()
	}
	for wcID, rs := range e.reservation {
		e.reservation[wcID] = Merge(rs)
	}
}

// workCenterOrder returns work center ids in the order work orders first
// reference them, followed by any remaining (work-order-less) centers in map
// iteration order. Each center's reservations are seeded independently, so
// the seeded result does not depend on this order.
func (e *engine) workCenterOrder() []core.ID {
	seen := make(map[core.ID]struct{}, len(e.wcByID))
	var order []core.ID
	for _, id := range e.woOrder {
		wc := e.woByID[id].WorkCenterID
		if _, ok := seen[wc]; ok {
			continue
		}
		seen[wc] = struct{}{}
		order = append(order, wc)
	}
	for id := range e.wcByID {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	return order
}

// place runs Step D for a single (non-maintenance) work order: find the
// earliest feasible start honoring dependencies and reservations, compute
// its end via the duration calculator, resolve overlaps by pushing, then
// commit the result.
func (e *engine) place(_ context.Context, wo *WorkOrder) error {
	wc := e.wcByID[wo.WorkCenterID]
	original := wo.Interval()

	var reasons []string
	earliest := original.Start
	for _, parentID := range wo.DependsOn {
		parentInterval, ok := e.schedule[parentID]
		if !ok {
			return core.NewError(
				errMissingDependency(wo.Number, parentID.String()),
				core.CodeMissingDependency,
				map[string]any{"workOrder": wo.Number, "parent": parentID},
			)
		}
		if parentInterval.End.After(earliest) {
			earliest = parentInterval.End
			reasons = append(reasons, fmt.Sprintf("dependency ready at %s", core.FormatTimestamp(earliest)))
		}
	}

	start, err := snapToNextShiftTime(earliest, wc.Shifts)
	if err != nil {
		return err
	}
	reservations := e.reservation[wc.ID]

	for i := 0; ; i++ {
		if i >= maxFeasibilityIterations {
			return core.NewError(
				errGuardExceeded(wo.Number, "feasibility search", maxFeasibilityIterations),
				core.CodeGuardExceeded,
				map[string]any{"workOrder": wo.Number},
			)
		}
		blocking, ok := insideReservation(reservations, start)
		if !ok {
			break
		}
		start, err = snapToNextShiftTime(blocking.Interval.End, wc.Shifts)
		if err != nil {
			return err
		}
	}

	maintenanceBlocks := blocksFromReservations(reservations)
	end, err := endAfterWorkingMinutes(wo.Number, start, wo.DurationMinutes, wc.Shifts, maintenanceBlocks)
	if err != nil {
		return err
	}

	for i := 0; ; i++ {
		if i >= maxFeasibilityIterations {
			return core.NewError(
				errGuardExceeded(wo.Number, "overlap resolution", maxFeasibilityIterations),
				core.CodeGuardExceeded,
				map[string]any{"workOrder": wo.Number},
			)
		}
		overlap, ok := FirstOverlap(reservations, start, end)
		if !ok {
			break
		}
		start, err = snapToNextShiftTime(overlap.Interval.End, wc.Shifts)
		if err != nil {
			return err
		}
		end, err = endAfterWorkingMinutes(wo.Number, start, wo.DurationMinutes, wc.Shifts, maintenanceBlocks)
		if err != nil {
			return err
		}
	}

	newInterval := Interval{Start: start, End: end}
	e.reservation[wc.ID] = Merge(append(reservations, Reservation{
		Interval: newInterval,
		Kind:     ReservationScheduledWO,
		SourceID: wo.ID,
	}))
	e.schedule[wo.ID] = newInterval
	wo.Start = start
	wo.End = end

	if !newInterval.Start.Equal(original.Start) || !newInterval.End.Equal(original.End) {
		if len(reasons) == 0 {
			reasons = []string{"Reflow adjustment"}
		}
		e.changes = append(e.changes, ChangeRecord{
			WorkOrderID:      wo.ID,
			WorkOrderNumber:  wo.Number,
			WorkCenterID:     wc.ID,
			OriginalInterval: original,
			NewInterval:      newInterval,
			DeltaStartMin:    minutesBetween(original.Start, newInterval.Start),
			DeltaEndMin:      minutesBetween(original.End, newInterval.End),
			Reasons:          dedupeReasons(reasons),
		})
	}
	return nil
}

// insideReservation reports the first reservation that strictly contains t
// (r.Start <= t < r.End), used by the feasibility search before the more
// expensive duration calculation is invoked (§9 Design notes).
func insideReservation(rs []Reservation, t time.Time) (Reservation, bool) {
	for _, r := range rs {
		if !r.Interval.Start.After(t) && t.Before(r.Interval.End) {
			return r, true
		}
	}
	return Reservation{}, false
}

func blocksFromReservations(rs []Reservation) []Interval {
	out := make([]Interval, len(rs))
	for i, r := range rs {
		out[i] = r.Interval
	}
	return out
}

func (e *engine) result() *Result {
	updated := make([]*WorkOrder, 0, len(e.woOrder))
	for _, id := range e.woOrder {
		updated = append(updated, e.woByID[id])
	}
	explanation := []string{
		fmt.Sprintf("%d work order(s) changed.", len(e.changes)),
		"Strategy: topological dependency ordering + earliest-feasible placement per work center under shift and maintenance calendars.",
	}
	return &Result{
		UpdatedWorkOrders: updated,
		Changes:           e.changes,
		Explanation:       explanation,
	}
}
