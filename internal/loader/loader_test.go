package loader_test

import (
	"strings"
	"testing"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"workCenters": [
		{
			"docId": "WC1",
			"docType": "workCenter",
			"data": {
				"name": "Press 1",
				"shifts": [{"dayOfWeek": 1, "startHour": 8, "endHour": 16}],
				"maintenanceWindows": [
					{"startDate": "2026-02-09T08:00:00.000Z", "endDate": "2026-02-09T10:00:00.000Z", "reason": "PM"}
				]
			}
		}
	],
	"workOrders": [
		{
			"docId": "WO1",
			"docType": "workOrder",
			"data": {
				"workOrderNumber": "WO-1001",
				"workCenterId": "WC1",
				"startDate": "2026-02-09T08:00:00.000Z",
				"endDate": "2026-02-09T09:00:00.000Z",
				"durationMinutes": 60,
				"dependsOnWorkOrderIds": [],
				"notes": "fragile tooling, inspect before run"
			}
		}
	],
	"manufacturingOrders": []
}`

func TestLoadPayload(t *testing.T) {
	t.Run("Should decode a well-formed payload", func(t *testing.T) {
		p, err := loader.LoadPayload(strings.NewReader(samplePayload))
		require.NoError(t, err)
		require.Len(t, p.WorkOrders, 1)
		require.Len(t, p.WorkCenters, 1)
		assert.Equal(t, "WO1", p.WorkOrders[0].DocID)
	})
	t.Run("Should fail with InvalidInput on malformed JSON", func(t *testing.T) {
		_, err := loader.LoadPayload(strings.NewReader("{not json"))
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.CodeInvalidInput, coreErr.Code)
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should accept a well-formed payload", func(t *testing.T) {
		p, err := loader.LoadPayload(strings.NewReader(samplePayload))
		require.NoError(t, err)
		assert.NoError(t, loader.Validate(p))
	})
	t.Run("Should reject a work order missing its required docId", func(t *testing.T) {
		bad := `{"workOrders":[{"docType":"workOrder","data":{"workOrderNumber":"W","workCenterId":"WC1","startDate":"2026-02-09T08:00:00.000Z","endDate":"2026-02-09T09:00:00.000Z","durationMinutes":60}}]}`
		p, err := loader.LoadPayload(strings.NewReader(bad))
		require.NoError(t, err)
		err = loader.Validate(p)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.CodeInvalidInput, coreErr.Code)
	})
	t.Run("Should reject a work order with a non-positive duration", func(t *testing.T) {
		bad := `{"workOrders":[{"docId":"WO1","docType":"workOrder","data":{"workOrderNumber":"W","workCenterId":"WC1","startDate":"2026-02-09T08:00:00.000Z","endDate":"2026-02-09T09:00:00.000Z","durationMinutes":0}}]}`
		p, err := loader.LoadPayload(strings.NewReader(bad))
		require.NoError(t, err)
		require.Error(t, loader.Validate(p))
	})
}

func TestToEngineInput(t *testing.T) {
	t.Run("Should convert a validated payload into engine domain types", func(t *testing.T) {
		p, err := loader.LoadPayload(strings.NewReader(samplePayload))
		require.NoError(t, err)
		require.NoError(t, loader.Validate(p))

		input, err := loader.ToEngineInput(p)
		require.NoError(t, err)
		require.Len(t, input.WorkCenters, 1)
		require.Len(t, input.WorkOrders, 1)

		wc := input.WorkCenters[0]
		assert.Equal(t, core.ID("WC1"), wc.ID)
		require.Len(t, wc.Shifts, 1)
		assert.Equal(t, 1, wc.Shifts[0].DayOfWeek)
		require.Len(t, wc.MaintenanceWindows, 1)

		wo := input.WorkOrders[0]
		assert.Equal(t, core.ID("WO1"), wo.ID)
		assert.Equal(t, "WO-1001", wo.Number)
		assert.Equal(t, core.ID("WC1"), wo.WorkCenterID)
		assert.Equal(t, 60, wo.DurationMinutes)
	})
}
