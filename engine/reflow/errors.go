package reflow

import (
	"fmt"
	"time"
)

func errInvalidInterval(start, end time.Time) error {
	return fmt.Errorf("invalid interval: end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
}

func errUnsupportedShift(dayOfWeek, startHour, endHour int) error {
	return fmt.Errorf(
		"unsupported shift: day=%d startHour=%d endHour=%d (overnight or zero-length shifts are rejected)",
		dayOfWeek, startHour, endHour,
	)
}

func errNoShiftFound(t time.Time) error {
	return fmt.Errorf("no in-shift instant found within 14 days of %s", t.Format(time.RFC3339))
}

func errUnschedulable(woNumber string, start time.Time) error {
	return fmt.Errorf("work order %s: could not consume its working minutes within the day budget from %s", woNumber, start.Format(time.RFC3339))
}

func errCircularDependency(workOrderLabels []string) error {
	return fmt.Errorf("circular dependency detected among work orders: %v", workOrderLabels)
}

func errMissingDependency(woNumber, parentID string) error {
	return fmt.Errorf("work order %s: missing dependency %s in schedule", woNumber, parentID)
}

func errMissingWorkCenter(woNumber, workCenterID string) error {
	return fmt.Errorf("work order %s: unknown work center %s", woNumber, workCenterID)
}

func errGuardExceeded(woNumber, phase string, limit int) error {
	return fmt.Errorf("work order %s: %s did not converge within %d iterations", woNumber, phase, limit)
}
