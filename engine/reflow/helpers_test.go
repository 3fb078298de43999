package reflow_test

import (
	"context"
	"time"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/engine/reflow"
)

var testCtx = context.Background()

// weekBase is a Sunday (weekday 0), so weekDate(w, d, h) lands on the
// calendar day `w` weeks and `d` weekdays after it, at hour `h` UTC.
var weekBase = time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)

func weekDate(week, weekday, hour int) time.Time {
	d := weekBase.AddDate(0, 0, week*7+weekday)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

// day returns an hour on the given weekday (0=Sunday..6=Saturday) of the
// first test week.
func day(weekday, hour int) time.Time {
	return weekDate(0, weekday, hour)
}

// defaultShifts is Monday-Friday 08:00-16:00.
func defaultShifts() []reflow.Shift {
	var shifts []reflow.Shift
	for d := 1; d <= 5; d++ {
		shifts = append(shifts, reflow.Shift{DayOfWeek: d, StartHour: 8, EndHour: 16})
	}
	return shifts
}

func center(name string, shifts []reflow.Shift) *reflow.WorkCenter {
	if shifts == nil {
		shifts = defaultShifts()
	}
	return &reflow.WorkCenter{ID: core.MustNewID(), Name: name, Shifts: shifts}
}

func order(number string, wcID core.ID, start, end time.Time, durationMinutes int) *reflow.WorkOrder {
	return &reflow.WorkOrder{
		ID:              core.MustNewID(),
		Number:          number,
		WorkCenterID:    wcID,
		Start:           start,
		End:             end,
		DurationMinutes: durationMinutes,
	}
}

func maintenanceOrder(number string, wcID core.ID, start, end time.Time) *reflow.WorkOrder {
	wo := order(number, wcID, start, end, int(end.Sub(start).Minutes()))
	wo.IsMaintenance = true
	return wo
}
