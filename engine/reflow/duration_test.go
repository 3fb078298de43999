package reflow_test

import (
	"testing"
	"time"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/engine/reflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndAfterWorkingMinutes(t *testing.T) {
	shifts := []reflow.Shift{{DayOfWeek: 1, StartHour: 8, EndHour: 16}} // Monday 08:00-16:00

	t.Run("Should stay within a single day when the duration fits", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC) // Monday
		end, err := reflow.EndAfterWorkingMinutes(start, 120, shifts, nil)
		require.NoError(t, err)
		assert.Equal(t, start.Add(2*time.Hour), end)
	})

	t.Run("Should snap a start outside the shift to the next shift window", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 18, 0, 0, 0, time.UTC) // Monday, after hours
		end, err := reflow.EndAfterWorkingMinutes(start, 60, shifts, nil)
		require.NoError(t, err)
		next := time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC) // following Monday 08:00
		assert.Equal(t, next.Add(time.Hour), end)
	})

	t.Run("Should carry remaining minutes across an off-shift gap", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 15, 0, 0, 0, time.UTC) // Monday 15:00, 1h left in shift
		end, err := reflow.EndAfterWorkingMinutes(start, 120, shifts, nil)
		require.NoError(t, err)
		next := time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, next.Add(time.Hour), end) // 60m Monday + 60m next Monday
	})

	t.Run("Should skip a maintenance block inside the shift", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
		block := reflow.Interval{
			Start: time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC),
		}
		end, err := reflow.EndAfterWorkingMinutes(start, 120, shifts, []reflow.Interval{block})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 2, 9, 11, 0, 0, 0, time.UTC), end)
	})

	t.Run("Should fail with NoShiftFound when no shift ever matches", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
		_, err := reflow.EndAfterWorkingMinutes(start, 60, nil, nil)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.CodeNoShiftFound, coreErr.Code)
	})
}

func TestWorkingMinutesBetween(t *testing.T) {
	shifts := []reflow.Shift{{DayOfWeek: 1, StartHour: 8, EndHour: 16}}

	t.Run("Should equal the consumed duration for a simple in-shift span", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
		end := time.Date(2026, 2, 9, 11, 0, 0, 0, time.UTC)
		minutes, err := reflow.WorkingMinutesBetween(start, end, shifts, nil)
		require.NoError(t, err)
		assert.Equal(t, 120, minutes)
	})

	t.Run("Should return zero for a non-positive span", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
		minutes, err := reflow.WorkingMinutesBetween(start, start, shifts, nil)
		require.NoError(t, err)
		assert.Zero(t, minutes)
	})

	t.Run("Should be the inverse of EndAfterWorkingMinutes", func(t *testing.T) {
		start := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
		end, err := reflow.EndAfterWorkingMinutes(start, 90, shifts, nil)
		require.NoError(t, err)
		minutes, err := reflow.WorkingMinutesBetween(start, end, shifts, nil)
		require.NoError(t, err)
		assert.Equal(t, 90, minutes)
	})
}
