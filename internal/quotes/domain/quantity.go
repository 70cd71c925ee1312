package domain

import "encoding/json"

// Quantity is the tagged quantity payload of a service line. Exactly one
// variant applies, keyed by the line's ServiceType: every service is
// quantified by a plain unit count except wood powerwashing, which carries
// the structured deck measurements.
type Quantity interface {
	isQuantity()
}

// Units quantifies a service by a single non-negative count.
type Units float64

func (Units) isQuantity() {}

// WoodMeasurements quantifies the wood powerwashing service.
type WoodMeasurements struct {
	AreaSquareFootage float64 `json:"areaSquareFootage"`
	NumberOfStairs    float64 `json:"numberOfStairs"`
	NumberOfPosts     float64 `json:"numberOfPosts"`
	RailingLengthFeet float64 `json:"railingLengthFeet"`
	NumberOfSpindles  float64 `json:"numberOfSpindles"`
}

func (WoodMeasurements) isQuantity() {}

// PricingRequest asks the remote quote service to price one service line.
// Its wire form is either {serviceType, units} or the five measurement
// fields, matching the variant.
type PricingRequest struct {
	ServiceType ServiceType
	Quantity    Quantity
}

// MarshalJSON produces the exact variant-dependent wire shape.
func (r PricingRequest) MarshalJSON() ([]byte, error) {
	switch q := r.Quantity.(type) {
	case WoodMeasurements:
		return json.Marshal(struct {
			ServiceType       ServiceType `json:"serviceType"`
			AreaSquareFootage float64     `json:"areaSquareFootage"`
			NumberOfStairs    float64     `json:"numberOfStairs"`
			NumberOfPosts     float64     `json:"numberOfPosts"`
			RailingLengthFeet float64     `json:"railingLengthFeet"`
			NumberOfSpindles  float64     `json:"numberOfSpindles"`
		}{r.ServiceType, q.AreaSquareFootage, q.NumberOfStairs, q.NumberOfPosts, q.RailingLengthFeet, q.NumberOfSpindles})
	case Units:
		return json.Marshal(struct {
			ServiceType ServiceType `json:"serviceType"`
			Units       float64     `json:"units"`
		}{r.ServiceType, float64(q)})
	default:
		// Treat an absent payload as zero units rather than failing the call.
		return json.Marshal(struct {
			ServiceType ServiceType `json:"serviceType"`
			Units       float64     `json:"units"`
		}{r.ServiceType, 0})
	}
}

// PricingBreakdown is what the remote quote service computes for one
// priced line. The portal never derives any of these fields itself.
type PricingBreakdown struct {
	ServiceType       ServiceType `json:"serviceType"`
	NumberOfUnits     float64     `json:"numberOfUnits"`
	NumberOfPersons   float64     `json:"numberOfPersons"`
	SetupMinutes      float64     `json:"setupMinutes"`
	PerUnitMinutes    float64     `json:"perUnitMinutes"`
	HourlyCrewCharge  float64     `json:"hourlyCrewCharge"`
	TotalTimeMinutes  float64     `json:"totalTimeMinutes"`
	TotalTimeHours    float64     `json:"totalTimeHours"`
	CalendarSlotHours float64     `json:"calendarSlotHours"`
	Subtotal          float64     `json:"subtotal"`
	Discount          float64     `json:"discount"`
	Tax               float64     `json:"tax"`
	TotalCost         float64     `json:"totalCost"`
}
