// Package editor drives the add/edit flow for a single service line as an
// explicit state machine. Every transition is a method on Editor and every
// reachable state is one of the three phases below, so a line can never be
// half-added or stuck waiting on a pricing call that already failed.
package editor

import (
	"context"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

// Phase is the editor's position in the add/edit flow.
type Phase string

const (
	// PhaseIdle: no line is being worked on.
	PhaseIdle Phase = "IDLE"
	// PhaseFilling: a service type is chosen and quantity fields are open.
	PhaseFilling Phase = "FILLING"
	// PhasePricing: a pricing call is in flight; input is locked.
	PhasePricing Phase = "PRICING"
)

// Pricer prices one service line remotely. The portal never computes line
// prices itself.
type Pricer interface {
	PriceService(ctx context.Context, req domain.PricingRequest) (domain.PricingBreakdown, error)
}

// Form holds the inputs of the line being filled. Both quantity variants
// are kept so switching the service type back and forth does not lose the
// values already typed for the current variant.
type Form struct {
	ServiceType  domain.ServiceType      `json:"serviceType"`
	Units        float64                 `json:"units"`
	Measurements domain.WoodMeasurements `json:"measurements"`
}

// Quantity returns the variant the chosen service type uses.
func (f Form) Quantity() domain.Quantity {
	if f.ServiceType.UsesMeasurements() {
		return f.Measurements
	}
	return domain.Units(f.Units)
}

// Editor is the per-draft line editor state. It is serialized alongside
// the draft between requests.
type Editor struct {
	Phase        Phase `json:"phase"`
	EditingIndex *int  `json:"editingIndex,omitempty"` // nil means a new line
	Form         Form  `json:"form"`
}

// New returns an idle editor.
func New() *Editor {
	return &Editor{Phase: PhaseIdle}
}

// Begin starts a new line with the given service type.
func (e *Editor) Begin(serviceType domain.ServiceType) error {
	if !serviceType.Valid() {
		return apperr.Validation("unknown service type")
	}
	if e.Phase == PhasePricing {
		return apperr.Conflict("a pricing request is already in progress")
	}
	e.Phase = PhaseFilling
	e.EditingIndex = nil
	e.Form = Form{ServiceType: serviceType}
	return nil
}

// BeginEdit loads an existing line's inputs for editing in place. The
// index is remembered so submission replaces rather than appends.
func (e *Editor) BeginEdit(index int, line domain.ServiceLine) error {
	if e.Phase == PhasePricing {
		return apperr.Conflict("a pricing request is already in progress")
	}
	e.Phase = PhaseFilling
	e.EditingIndex = &index
	e.Form = Form{
		ServiceType: line.ServiceType,
		Units:       line.Units,
		Measurements: domain.WoodMeasurements{
			AreaSquareFootage: line.AreaSquareFootage,
			NumberOfStairs:    line.NumberOfStairs,
			NumberOfPosts:     line.NumberOfPosts,
			RailingLengthFeet: line.RailingLengthFeet,
			NumberOfSpindles:  line.NumberOfSpindles,
		},
	}
	return nil
}

// SetServiceType switches the service type of the line being filled and
// resets only the quantity fields that belong to the variant being left,
// so a switch-and-switch-back keeps what was typed.
func (e *Editor) SetServiceType(serviceType domain.ServiceType) error {
	if e.Phase != PhaseFilling {
		return apperr.Conflict("no line is being edited")
	}
	if !serviceType.Valid() {
		return apperr.Validation("unknown service type")
	}
	if serviceType.UsesMeasurements() != e.Form.ServiceType.UsesMeasurements() {
		if serviceType.UsesMeasurements() {
			e.Form.Units = 0
		} else {
			e.Form.Measurements = domain.WoodMeasurements{}
		}
	}
	e.Form.ServiceType = serviceType
	return nil
}

// SetUnits records the unit count for a unit-quantified line.
func (e *Editor) SetUnits(units float64) error {
	if e.Phase != PhaseFilling {
		return apperr.Conflict("no line is being edited")
	}
	if e.Form.ServiceType.UsesMeasurements() {
		return apperr.Validation("this service is quantified by measurements, not units")
	}
	if units < 0 {
		return apperr.Validation("units must not be negative")
	}
	e.Form.Units = units
	return nil
}

// SetMeasurements records the deck measurements for wood powerwashing.
func (e *Editor) SetMeasurements(m domain.WoodMeasurements) error {
	if e.Phase != PhaseFilling {
		return apperr.Conflict("no line is being edited")
	}
	if !e.Form.ServiceType.UsesMeasurements() {
		return apperr.Validation("this service is quantified by units, not measurements")
	}
	if m.AreaSquareFootage < 0 || m.NumberOfStairs < 0 || m.NumberOfPosts < 0 ||
		m.RailingLengthFeet < 0 || m.NumberOfSpindles < 0 {
		return apperr.Validation("measurements must not be negative")
	}
	e.Form.Measurements = m
	return nil
}

// Cancel abandons the line being filled.
func (e *Editor) Cancel() {
	if e.Phase == PhaseFilling {
		e.Phase = PhaseIdle
		e.EditingIndex = nil
		e.Form = Form{}
	}
}

// Result is a successfully priced line ready to be committed to the
// draft, together with the index to replace when editing in place.
type Result struct {
	Line         domain.ServiceLine
	EditingIndex *int
}

// Submit prices the filled line through the pricer. On success the editor
// returns to idle and hands back the priced line; on failure it returns
// to filling with every input intact so the pricing call can be retried
// or the inputs adjusted.
func (e *Editor) Submit(ctx context.Context, pricer Pricer) (Result, error) {
	if e.Phase != PhaseFilling {
		return Result{}, apperr.Conflict("no line is being edited")
	}

	e.Phase = PhasePricing
	breakdown, err := pricer.PriceService(ctx, domain.PricingRequest{
		ServiceType: e.Form.ServiceType,
		Quantity:    e.Form.Quantity(),
	})
	if err != nil {
		e.Phase = PhaseFilling
		return Result{}, err
	}

	line := domain.ServiceLine{
		ServiceType:       e.Form.ServiceType,
		SetupMinutes:      breakdown.SetupMinutes,
		PerUnitMinutes:    breakdown.PerUnitMinutes,
		HourlyCrewCharge:  breakdown.HourlyCrewCharge,
		NumberOfPersons:   breakdown.NumberOfPersons,
		TotalTimeMinutes:  breakdown.TotalTimeMinutes,
		TotalTimeHours:    breakdown.TotalTimeHours,
		CalendarSlotHours: breakdown.CalendarSlotHours,
		Subtotal:          breakdown.TotalCost,
	}
	if e.Form.ServiceType.UsesMeasurements() {
		line.AreaSquareFootage = e.Form.Measurements.AreaSquareFootage
		line.NumberOfStairs = e.Form.Measurements.NumberOfStairs
		line.NumberOfPosts = e.Form.Measurements.NumberOfPosts
		line.RailingLengthFeet = e.Form.Measurements.RailingLengthFeet
		line.NumberOfSpindles = e.Form.Measurements.NumberOfSpindles
	} else {
		line.Units = e.Form.Units
	}

	result := Result{Line: line, EditingIndex: e.EditingIndex}
	e.Phase = PhaseIdle
	e.EditingIndex = nil
	e.Form = Form{}
	return result, nil
}
