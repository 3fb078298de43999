package loader_test

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/engine/reflow"
	"github.com/compozy/reflow/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseTimestamp(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := core.ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestFromResult(t *testing.T) {
	t.Run("Should rewrite only startDate/endDate on changed work orders", func(t *testing.T) {
		p, err := loader.LoadPayload(strings.NewReader(samplePayload))
		require.NoError(t, err)

		newStart := mustParseTimestamp(t, "2026-02-09T10:00:00.000Z")
		newEnd := mustParseTimestamp(t, "2026-02-09T11:00:00.000Z")

		result := &reflow.Result{
			UpdatedWorkOrders: []*reflow.WorkOrder{
				{ID: core.ID("WO1"), Number: "WO-1001", Start: newStart, End: newEnd},
			},
			Changes: []reflow.ChangeRecord{
				{
					WorkOrderID:     core.ID("WO1"),
					WorkOrderNumber: "WO-1001",
					WorkCenterID:    core.ID("WC1"),
					OriginalInterval: reflow.Interval{
						Start: mustParseTimestamp(t, "2026-02-09T08:00:00.000Z"),
						End:   mustParseTimestamp(t, "2026-02-09T09:00:00.000Z"),
					},
					NewInterval:   reflow.Interval{Start: newStart, End: newEnd},
					DeltaStartMin: 120,
					DeltaEndMin:   120,
					Reasons:       []string{"Reflow adjustment"},
				},
			},
			Explanation: []string{"1 work order(s) changed."},
		}

		out, err := loader.FromResult(p.WorkOrders, result)
		require.NoError(t, err)
		require.Len(t, out.UpdatedWorkOrders, 1)

		var data loader.WorkOrderData
		require.NoError(t, json.Unmarshal(out.UpdatedWorkOrders[0].Data, &data))
		assert.Equal(t, "2026-02-09T10:00:00.000Z", data.StartDate)
		assert.Equal(t, "2026-02-09T11:00:00.000Z", data.EndDate)
		assert.Equal(t, "WO-1001", data.WorkOrderNumber, "non-scheduling fields survive untouched")

		var raw map[string]any
		require.NoError(t, json.Unmarshal(out.UpdatedWorkOrders[0].Data, &raw))
		assert.Equal(
			t, "fragile tooling, inspect before run", raw["notes"],
			"fields this package doesn't model still survive, since output patching is surgical",
		)

		require.Len(t, out.Changes, 1)
		assert.Equal(t, "WO-1001", out.Changes[0].WorkOrderNumber)
		assert.Equal(t, 120, out.Changes[0].DeltaStartMin)
	})
}
