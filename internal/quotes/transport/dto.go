// Package transport defines the request and response shapes of the quote
// endpoints. Draft bodies are deliberately loose: a draft may hold
// incomplete client details at any time, and completeness is only
// enforced at submission.
package transport

import (
	"simcoe_portal/internal/quotes/domain"
)

// ClientInfoRequest carries the quote recipient's details for a draft.
type ClientInfoRequest struct {
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
	Address     string `json:"address" validate:"max=200"`
	City        string `json:"city" validate:"max=100"`
	Province    string `json:"province" validate:"max=100"`
	PostalCode  string `json:"postalCode" validate:"max=20"`
	PhoneNumber string `json:"phoneNumber" validate:"max=30"`
	OtherPhone  string `json:"otherPhone" validate:"max=30"`
	Email       string `json:"email" validate:"omitempty,max=200"`
	Notes       string `json:"notes" validate:"max=2000"`
	Units       string `json:"units" validate:"max=20"`
}

// ToDomain converts the request to the domain client info.
func (r ClientInfoRequest) ToDomain() domain.ClientInfo {
	return domain.ClientInfo{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Address:     r.Address,
		City:        r.City,
		Province:    r.Province,
		PostalCode:  r.PostalCode,
		PhoneNumber: r.PhoneNumber,
		OtherPhone:  r.OtherPhone,
		Email:       r.Email,
		Notes:       r.Notes,
		Units:       r.Units,
	}
}

// SetDiscountRequest applies a discount to a draft.
type SetDiscountRequest struct {
	Type  string  `json:"type" validate:"required,oneof=FLAT PERCENTAGE"`
	Value float64 `json:"value" validate:"gte=0"`
}

// BeginLineRequest starts a new service line in the editor.
type BeginLineRequest struct {
	ServiceType string `json:"serviceType" validate:"required"`
}

// EditLineRequest loads an existing line into the editor.
type EditLineRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// SetServiceTypeRequest switches the editor's service type.
type SetServiceTypeRequest struct {
	ServiceType string `json:"serviceType" validate:"required"`
}

// SetUnitsRequest records the unit count for the line being filled.
type SetUnitsRequest struct {
	Units float64 `json:"units" validate:"gte=0"`
}

// SetMeasurementsRequest records the deck measurements for the line
// being filled.
type SetMeasurementsRequest struct {
	AreaSquareFootage float64 `json:"areaSquareFootage" validate:"gte=0"`
	NumberOfStairs    float64 `json:"numberOfStairs" validate:"gte=0"`
	NumberOfPosts     float64 `json:"numberOfPosts" validate:"gte=0"`
	RailingLengthFeet float64 `json:"railingLengthFeet" validate:"gte=0"`
	NumberOfSpindles  float64 `json:"numberOfSpindles" validate:"gte=0"`
}

// ToDomain converts the request to the domain measurements.
func (r SetMeasurementsRequest) ToDomain() domain.WoodMeasurements {
	return domain.WoodMeasurements{
		AreaSquareFootage: r.AreaSquareFootage,
		NumberOfStairs:    r.NumberOfStairs,
		NumberOfPosts:     r.NumberOfPosts,
		RailingLengthFeet: r.RailingLengthFeet,
		NumberOfSpindles:  r.NumberOfSpindles,
	}
}

// SetStatusRequest patches a persisted quote's status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListQuotesQuery selects a page of the quote list.
type ListQuotesQuery struct {
	Page   int    `form:"page" validate:"gte=0"`
	Limit  int    `form:"limit" validate:"gte=0,lte=100"`
	Text   string `form:"text" validate:"max=200"`
	UserID string `form:"userId" validate:"max=100"`
}

// QuoteResponse wraps a persisted quote together with a staleness flag:
// true means the quote service was unreachable and this is the portal's
// last snapshot.
type QuoteResponse struct {
	Quote domain.Quote `json:"quote"`
	Stale bool         `json:"stale,omitempty"`
}
