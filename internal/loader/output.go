package loader

import (
	"github.com/tidwall/sjson"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/engine/reflow"
)

// ChangeDoc is the wire representation of a reflow.ChangeRecord (§6).
type ChangeDoc struct {
	WorkOrderID     string   `json:"workOrderId"`
	WorkOrderNumber string   `json:"workOrderNumber"`
	WorkCenterID    string   `json:"workCenterId"`
	OriginalStart   string   `json:"originalStart"`
	OriginalEnd     string   `json:"originalEnd"`
	NewStart        string   `json:"newStart"`
	NewEnd          string   `json:"newEnd"`
	DeltaStartMin   int      `json:"deltaStartMinutes"`
	DeltaEndMin     int      `json:"deltaEndMinutes"`
	Reasons         []string `json:"reasons"`
}

// OutputPayload is the §6 `{updatedWorkOrders, changes, explanation}` output
// document.
type OutputPayload struct {
	UpdatedWorkOrders []Envelope  `json:"updatedWorkOrders"`
	Changes           []ChangeDoc `json:"changes"`
	Explanation       []string   `json:"explanation"`
}

// FromResult converts an engine result back into full output documents,
// rewriting each work order's startDate/endDate (§6) while leaving every
// other input field alone. original carries the source envelopes; each
// work order's data is patched in place with sjson rather than decoded into
// WorkOrderData and re-marshaled, so any field this package doesn't model
// (including unknown/future ones) survives byte-for-byte in the output.
func FromResult(original []Envelope, result *reflow.Result) (*OutputPayload, error) {
	byID := make(map[string]Envelope, len(original))
	for _, env := range original {
		byID[env.DocID] = env
	}

	updated := make([]Envelope, 0, len(result.UpdatedWorkOrders))
	for _, wo := range result.UpdatedWorkOrders {
		env, ok := byID[wo.ID.String()]
		if !ok {
			continue
		}
		raw, err := sjson.SetBytes(env.Data, "startDate", core.FormatTimestamp(wo.Start))
		if err != nil {
			return nil, invalidInput(env.DocID, err)
		}
		raw, err = sjson.SetBytes(raw, "endDate", core.FormatTimestamp(wo.End))
		if err != nil {
			return nil, invalidInput(env.DocID, err)
		}
		env.Data = raw
		updated = append(updated, env)
	}

	changes := make([]ChangeDoc, 0, len(result.Changes))
	for _, c := range result.Changes {
		changes = append(changes, ChangeDoc{
			WorkOrderID:     c.WorkOrderID.String(),
			WorkOrderNumber: c.WorkOrderNumber,
			WorkCenterID:    c.WorkCenterID.String(),
			OriginalStart:   core.FormatTimestamp(c.OriginalInterval.Start),
			OriginalEnd:     core.FormatTimestamp(c.OriginalInterval.End),
			NewStart:        core.FormatTimestamp(c.NewInterval.Start),
			NewEnd:          core.FormatTimestamp(c.NewInterval.End),
			DeltaStartMin:   c.DeltaStartMin,
			DeltaEndMin:     c.DeltaEndMin,
			Reasons:         c.Reasons,
		})
	}

	return &OutputPayload{
		UpdatedWorkOrders: updated,
		Changes:           changes,
		Explanation:       result.Explanation,
	}, nil
}
