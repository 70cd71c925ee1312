package editor

import (
	"context"
	"testing"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

type fakePricer struct {
	breakdown domain.PricingBreakdown
	err       error
	lastReq   domain.PricingRequest
	calls     int
}

func (f *fakePricer) PriceService(_ context.Context, req domain.PricingRequest) (domain.PricingBreakdown, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return domain.PricingBreakdown{}, f.err
	}
	return f.breakdown, nil
}

func TestSubmitAppendsNewPricedLine(t *testing.T) {
	e := New()
	if err := e.Begin(domain.ExteriorWindowCleaning); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.SetUnits(12); err != nil {
		t.Fatalf("SetUnits: %v", err)
	}

	pricer := &fakePricer{breakdown: domain.PricingBreakdown{
		SetupMinutes: 15, HourlyCrewCharge: 90, NumberOfPersons: 2, TotalCost: 144,
	}}
	result, err := e.Submit(context.Background(), pricer)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.EditingIndex != nil {
		t.Fatalf("editingIndex = %v, want nil for a new line", *result.EditingIndex)
	}
	if result.Line.Units != 12 {
		t.Fatalf("units = %v, want 12", result.Line.Units)
	}
	if result.Line.Subtotal != 144 {
		t.Fatalf("subtotal = %v, want the remote totalCost 144", result.Line.Subtotal)
	}
	if e.Phase != PhaseIdle {
		t.Fatalf("phase = %s after success, want IDLE", e.Phase)
	}

	units, ok := pricer.lastReq.Quantity.(domain.Units)
	if !ok || float64(units) != 12 {
		t.Fatalf("pricing request quantity = %#v, want Units(12)", pricer.lastReq.Quantity)
	}
}

func TestSubmitKeepsEditingIndex(t *testing.T) {
	e := New()
	existing := domain.ServiceLine{ServiceType: domain.RoofMossRemoval, Units: 3, Subtotal: 200}
	if err := e.BeginEdit(1, existing); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if err := e.SetUnits(5); err != nil {
		t.Fatalf("SetUnits: %v", err)
	}

	result, err := e.Submit(context.Background(), &fakePricer{breakdown: domain.PricingBreakdown{TotalCost: 320}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.EditingIndex == nil || *result.EditingIndex != 1 {
		t.Fatalf("editingIndex = %v, want 1", result.EditingIndex)
	}
}

func TestSubmitFailureReturnsToFillingWithInputsIntact(t *testing.T) {
	e := New()
	if err := e.Begin(domain.WoodPowerwashing); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	m := domain.WoodMeasurements{AreaSquareFootage: 300, NumberOfStairs: 6}
	if err := e.SetMeasurements(m); err != nil {
		t.Fatalf("SetMeasurements: %v", err)
	}

	pricer := &fakePricer{err: apperr.Unavailable("quote service unreachable")}
	if _, err := e.Submit(context.Background(), pricer); err == nil {
		t.Fatal("expected pricing failure")
	}

	if e.Phase != PhaseFilling {
		t.Fatalf("phase = %s after failure, want FILLING", e.Phase)
	}
	if e.Form.Measurements != m {
		t.Fatalf("measurements = %+v, want inputs preserved %+v", e.Form.Measurements, m)
	}

	// Same inputs can be resubmitted.
	pricer.err = nil
	pricer.breakdown = domain.PricingBreakdown{TotalCost: 450}
	result, err := e.Submit(context.Background(), pricer)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if result.Line.AreaSquareFootage != 300 {
		t.Fatalf("areaSquareFootage = %v, want 300", result.Line.AreaSquareFootage)
	}
	if pricer.calls != 2 {
		t.Fatalf("pricer calls = %d, want 2", pricer.calls)
	}
}

func TestSetServiceTypeResetsOnlyForeignVariantFields(t *testing.T) {
	e := New()
	if err := e.Begin(domain.ExteriorWindowCleaning); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.SetUnits(8); err != nil {
		t.Fatalf("SetUnits: %v", err)
	}

	// Unit-to-unit switch keeps the count.
	if err := e.SetServiceType(domain.InteriorWindowCleaning); err != nil {
		t.Fatalf("SetServiceType: %v", err)
	}
	if e.Form.Units != 8 {
		t.Fatalf("units = %v after unit-to-unit switch, want 8", e.Form.Units)
	}

	// Switching to the measured variant clears the unit count.
	if err := e.SetServiceType(domain.WoodPowerwashing); err != nil {
		t.Fatalf("SetServiceType: %v", err)
	}
	if e.Form.Units != 0 {
		t.Fatalf("units = %v after switch to measurements, want 0", e.Form.Units)
	}
	if err := e.SetMeasurements(domain.WoodMeasurements{NumberOfPosts: 4}); err != nil {
		t.Fatalf("SetMeasurements: %v", err)
	}

	// And back again clears the measurements.
	if err := e.SetServiceType(domain.ExteriorGutterCleaning); err != nil {
		t.Fatalf("SetServiceType: %v", err)
	}
	if e.Form.Measurements != (domain.WoodMeasurements{}) {
		t.Fatalf("measurements = %+v after switch to units, want zero", e.Form.Measurements)
	}
}

func TestQuantityVariantFollowsServiceType(t *testing.T) {
	e := New()
	if err := e.Begin(domain.WoodPowerwashing); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := e.SetUnits(5); err == nil {
		t.Fatal("SetUnits must be rejected for a measured service")
	}
	if err := e.SetMeasurements(domain.WoodMeasurements{AreaSquareFootage: 100}); err != nil {
		t.Fatalf("SetMeasurements: %v", err)
	}

	pricer := &fakePricer{breakdown: domain.PricingBreakdown{TotalCost: 90}}
	if _, err := e.Submit(context.Background(), pricer); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, ok := pricer.lastReq.Quantity.(domain.WoodMeasurements); !ok {
		t.Fatalf("pricing request quantity = %#v, want WoodMeasurements", pricer.lastReq.Quantity)
	}
}

func TestTransitionsRequireFillingPhase(t *testing.T) {
	e := New()
	if err := e.SetUnits(1); err == nil {
		t.Fatal("SetUnits from idle must fail")
	}
	if _, err := e.Submit(context.Background(), &fakePricer{}); err == nil {
		t.Fatal("Submit from idle must fail")
	}
	if err := e.Begin("LAWN_CARE"); err == nil {
		t.Fatal("Begin with an unknown service type must fail")
	}

	e.Cancel() // no-op from idle
	if e.Phase != PhaseIdle {
		t.Fatalf("phase = %s, want IDLE", e.Phase)
	}

	if err := e.Begin(domain.HouseSoftwashing); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	e.Cancel()
	if e.Phase != PhaseIdle || e.Form.ServiceType != "" {
		t.Fatalf("cancel must reset the editor, got phase=%s form=%+v", e.Phase, e.Form)
	}
}
