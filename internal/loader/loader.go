// Package loader is the external collaborator that turns the §6 input
// payload (JSON document envelopes) into the reflow engine's domain types.
// It owns JSON decoding and structural validation — the two concerns
// spec.md §1 explicitly keeps out of the core — so the core stays a
// dependency-free calculation library.
package loader

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/compozy/reflow/engine/core"
	"github.com/compozy/reflow/engine/reflow"
)

// DocType enumerates the recognized envelope kinds (§6). Anything else
// (e.g. a future doc type) is not rejected: DecodeDocument returns its data
// as raw JSON untouched.
type DocType string

const (
	DocTypeWorkOrder        DocType = "workOrder"
	DocTypeWorkCenter       DocType = "workCenter"
	DocTypeManufacturingOrd DocType = "manufacturingOrder"
)

// Envelope is the `{docId, docType, data}` wrapper every document arrives in.
type Envelope struct {
	DocID   string          `json:"docId"   validate:"required"`
	DocType DocType         `json:"docType" validate:"required"`
	Data    json.RawMessage `json:"data"    validate:"required"`
}

// ShiftDoc is a work center's `shifts[]` entry.
type ShiftDoc struct {
	DayOfWeek int `json:"dayOfWeek" validate:"min=0,max=6"`
	StartHour int `json:"startHour" validate:"min=0,max=23"`
	EndHour   int `json:"endHour"   validate:"min=0,max=23"`
}

// MaintenanceWindowDoc is a work center's `maintenanceWindows[]` entry.
type MaintenanceWindowDoc struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate"   validate:"required"`
	Reason    string `json:"reason"`
}

// WorkCenterData is a workCenter document's `data` object.
type WorkCenterData struct {
	Name               string                 `json:"name" validate:"required"`
	Shifts             []ShiftDoc             `json:"shifts"`
	MaintenanceWindows []MaintenanceWindowDoc `json:"maintenanceWindows"`
}

// WorkOrderData is a workOrder document's `data` object.
type WorkOrderData struct {
	WorkOrderNumber       string   `json:"workOrderNumber"       validate:"required"`
	ManufacturingOrderID  string   `json:"manufacturingOrderId"`
	WorkCenterID          string   `json:"workCenterId"          validate:"required"`
	StartDate             string   `json:"startDate"             validate:"required"`
	EndDate               string   `json:"endDate"               validate:"required"`
	DurationMinutes       int      `json:"durationMinutes"       validate:"gt=0"`
	IsMaintenance         bool     `json:"isMaintenance"`
	DependsOnWorkOrderIDs []string `json:"dependsOnWorkOrderIds"`
}

// Payload is the fully decoded, not-yet-validated input document set (§6).
type Payload struct {
	WorkOrders          []Envelope
	WorkCenters         []Envelope
	ManufacturingOrders []Envelope
}

type rawPayload struct {
	WorkOrders          []Envelope `json:"workOrders"`
	WorkCenters         []Envelope `json:"workCenters"`
	ManufacturingOrders []Envelope `json:"manufacturingOrders"`
}

// LoadPayload decodes the §6 input payload from r.
func LoadPayload(r io.Reader) (*Payload, error) {
	var raw rawPayload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, core.NewError(fmt.Errorf("decode input payload: %w", err), core.CodeInvalidInput, nil)
	}
	return &Payload{
		WorkOrders:          raw.WorkOrders,
		WorkCenters:         raw.WorkCenters,
		ManufacturingOrders: raw.ManufacturingOrders,
	}, nil
}

var structValidator = validator.New()

// DecodeDocument dispatches on docType and decodes raw into the concrete
// document data type it names (§6): *WorkOrderData for "workOrder",
// *WorkCenterData for "workCenter". Any other docType (manufacturing orders,
// or a future type this package doesn't model) is carried through untouched
// as the raw json.RawMessage rather than rejected.
func DecodeDocument(docType DocType, raw json.RawMessage) (any, error) {
	switch docType {
	case DocTypeWorkOrder:
		var data WorkOrderData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		return &data, nil
	case DocTypeWorkCenter:
		var data WorkCenterData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
		return &data, nil
	default:
		return raw, nil
	}
}

// Validate performs structural (type/shape/range) validation of p's
// envelopes and their decoded data, per §1 "structural input validation" —
// it never encodes scheduling semantics (those remain the core's
// InvalidInterval/UnsupportedShift/etc.).
func Validate(p *Payload) error {
	for _, env := range p.WorkOrders {
		if err := structValidator.Struct(env); err != nil {
			return invalidInput(env.DocID, err)
		}
		decoded, err := DecodeDocument(DocTypeWorkOrder, env.Data)
		if err != nil {
			return invalidInput(env.DocID, err)
		}
		if err := structValidator.Struct(decoded); err != nil {
			return invalidInput(env.DocID, err)
		}
	}
	for _, env := range p.WorkCenters {
		if err := structValidator.Struct(env); err != nil {
			return invalidInput(env.DocID, err)
		}
		decoded, err := DecodeDocument(DocTypeWorkCenter, env.Data)
		if err != nil {
			return invalidInput(env.DocID, err)
		}
		data, _ := decoded.(*WorkCenterData)
		if err := structValidator.Struct(data); err != nil {
			return invalidInput(env.DocID, err)
		}
		for _, s := range data.Shifts {
			if err := structValidator.Struct(s); err != nil {
				return invalidInput(env.DocID, err)
			}
		}
	}
	return nil
}

func invalidInput(docID string, err error) error {
	return core.NewError(
		fmt.Errorf("document %s: %w", docID, err),
		core.CodeInvalidInput,
		map[string]any{"docId": docID},
	)
}

// ToEngineInput decodes and converts a validated Payload into the reflow
// engine's domain types (engine/reflow.Input). Timestamps are parsed with
// core.ParseTimestamp; ManufacturingOrders are carried through verbatim as
// opaque JSON since the core never consults them (§1).
func ToEngineInput(p *Payload) (reflow.Input, error) {
	wcByDocID := make(map[string]*reflow.WorkCenter, len(p.WorkCenters))
	workCenters := make([]*reflow.WorkCenter, 0, len(p.WorkCenters))
	for _, env := range p.WorkCenters {
		decoded, err := DecodeDocument(DocTypeWorkCenter, env.Data)
		if err != nil {
			return reflow.Input{}, invalidInput(env.DocID, err)
		}
		data := decoded.(*WorkCenterData)
		wc := &reflow.WorkCenter{
			ID:     core.ID(env.DocID),
			Name:   data.Name,
			Shifts: make([]reflow.Shift, 0, len(data.Shifts)),
		}
		for _, s := range data.Shifts {
			wc.Shifts = append(wc.Shifts, reflow.Shift{
				DayOfWeek: s.DayOfWeek,
				StartHour: s.StartHour,
				EndHour:   s.EndHour,
			})
		}
		for _, mw := range data.MaintenanceWindows {
			start, err := core.ParseTimestamp(mw.StartDate)
			if err != nil {
				return reflow.Input{}, invalidInput(env.DocID, err)
			}
			end, err := core.ParseTimestamp(mw.EndDate)
			if err != nil {
				return reflow.Input{}, invalidInput(env.DocID, err)
			}
			iv, err := reflow.AsInterval(start, end)
			if err != nil {
				return reflow.Input{}, err
			}
			wc.MaintenanceWindows = append(wc.MaintenanceWindows, reflow.MaintenanceWindow{
				Interval: iv,
				Reason:   mw.Reason,
			})
		}
		wcByDocID[env.DocID] = wc
		workCenters = append(workCenters, wc)
	}

	workOrders := make([]*reflow.WorkOrder, 0, len(p.WorkOrders))
	for _, env := range p.WorkOrders {
		decoded, err := DecodeDocument(DocTypeWorkOrder, env.Data)
		if err != nil {
			return reflow.Input{}, invalidInput(env.DocID, err)
		}
		data := decoded.(*WorkOrderData)
		start, err := core.ParseTimestamp(data.StartDate)
		if err != nil {
			return reflow.Input{}, invalidInput(env.DocID, err)
		}
		end, err := core.ParseTimestamp(data.EndDate)
		if err != nil {
			return reflow.Input{}, invalidInput(env.DocID, err)
		}
		dependsOn := make([]core.ID, 0, len(data.DependsOnWorkOrderIDs))
		for _, id := range data.DependsOnWorkOrderIDs {
			dependsOn = append(dependsOn, core.ID(id))
		}
		workOrders = append(workOrders, &reflow.WorkOrder{
			ID:              core.ID(env.DocID),
			Number:          data.WorkOrderNumber,
			WorkCenterID:    core.ID(data.WorkCenterID),
			Start:           start,
			End:             end,
			DurationMinutes: data.DurationMinutes,
			IsMaintenance:   data.IsMaintenance,
			DependsOn:       dependsOn,
		})
	}

	manufacturingOrders := make([]any, 0, len(p.ManufacturingOrders))
	for _, env := range p.ManufacturingOrders {
		manufacturingOrders = append(manufacturingOrders, env)
	}

	return reflow.Input{
		WorkOrders:          workOrders,
		WorkCenters:         workCenters,
		ManufacturingOrders: manufacturingOrders,
	}, nil
}
