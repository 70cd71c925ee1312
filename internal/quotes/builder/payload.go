package builder

import (
	"strings"

	"simcoe_portal/internal/quotes/domain"
)

// ServicePayload is the wire shape of one line in a create/update request
// to the quote service. UI-only fields are stripped and numeric pricing
// fields default to zero.
type ServicePayload struct {
	ID                string             `json:"id,omitempty"`
	ServiceType       domain.ServiceType `json:"serviceType"`
	Units             float64            `json:"units"`
	AreaSquareFootage float64            `json:"areaSquareFootage,omitempty"`
	NumberOfStairs    float64            `json:"numberOfStairs,omitempty"`
	NumberOfPosts     float64            `json:"numberOfPosts,omitempty"`
	RailingLengthFeet float64            `json:"railingLengthFeet,omitempty"`
	NumberOfSpindles  float64            `json:"numberOfSpindles,omitempty"`
	SetupMinutes      float64            `json:"setupMinutes"`
	PerUnitMinutes    float64            `json:"perUnitMinutes"`
	HourlyCrewCharge  float64            `json:"hourlyCrewCharge"`
	NumberOfPersons   float64            `json:"numberOfPersons"`
	TotalTimeMinutes  float64            `json:"totalTimeMinutes"`
	TotalTimeHours    float64            `json:"totalTimeHours"`
	CalendarSlotHours float64            `json:"calendarSlotHours"`
	TotalCost         float64            `json:"totalCost"`
}

// ClientInfoPayload mirrors ClientInfo on the wire except for email: the
// quote service treats an absent email differently from an empty one, so a
// blank email must be omitted entirely, while the other optional fields
// are always sent.
type ClientInfoPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	Units       string `json:"units"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	PhoneNumber string `json:"phoneNumber"`
	OtherPhone  string `json:"otherPhone"`
	Email       string `json:"email,omitempty"`
	Notes       string `json:"notes"`
}

// Payload is the full create/update request body for a quote.
type Payload struct {
	UserID     string               `json:"userId"`
	ClientInfo ClientInfoPayload    `json:"clientInfo"`
	Services   []ServicePayload     `json:"services"`
	Subtotal   float64              `json:"subtotal"`
	Discount   domain.QuoteDiscount `json:"discount"`
	TaxValue   float64              `json:"taxValue"`
	Total      float64              `json:"total"`
}

// PersistablePayload projects the draft into the request body the quote
// service accepts, computing totals on the way. The discount is flattened
// to {flat, percentage}: flat always carries the computed dollar amount,
// percentage carries the raw rate only when a percentage discount was
// chosen, so the type can be inferred back on load.
func (d *Draft) PersistablePayload(userID string) Payload {
	totals := d.ComputeTotals()

	services := make([]ServicePayload, 0, len(d.Lines))
	for _, line := range d.Lines {
		services = append(services, ServicePayload{
			ID:                line.ID,
			ServiceType:       line.ServiceType,
			Units:             line.Units,
			AreaSquareFootage: line.AreaSquareFootage,
			NumberOfStairs:    line.NumberOfStairs,
			NumberOfPosts:     line.NumberOfPosts,
			RailingLengthFeet: line.RailingLengthFeet,
			NumberOfSpindles:  line.NumberOfSpindles,
			SetupMinutes:      line.SetupMinutes,
			PerUnitMinutes:    line.PerUnitMinutes,
			HourlyCrewCharge:  line.HourlyCrewCharge,
			NumberOfPersons:   line.NumberOfPersons,
			TotalTimeMinutes:  line.TotalTimeMinutes,
			TotalTimeHours:    line.TotalTimeHours,
			CalendarSlotHours: line.CalendarSlotHours,
			TotalCost:         line.Subtotal,
		})
	}

	discount := domain.QuoteDiscount{Flat: totals.Discount}
	if d.DiscountType == domain.DiscountPercentage && d.DiscountValue != nil {
		discount.Percentage = *d.DiscountValue
	}

	return Payload{
		UserID: userID,
		ClientInfo: ClientInfoPayload{
			FirstName:   strings.TrimSpace(d.ClientInfo.FirstName),
			LastName:    strings.TrimSpace(d.ClientInfo.LastName),
			Address:     strings.TrimSpace(d.ClientInfo.Address),
			Units:       strings.TrimSpace(d.ClientInfo.Units),
			City:        strings.TrimSpace(d.ClientInfo.City),
			Province:    strings.TrimSpace(d.ClientInfo.Province),
			PostalCode:  strings.TrimSpace(d.ClientInfo.PostalCode),
			PhoneNumber: strings.TrimSpace(d.ClientInfo.PhoneNumber),
			OtherPhone:  strings.TrimSpace(d.ClientInfo.OtherPhone),
			Email:       strings.TrimSpace(d.ClientInfo.Email),
			Notes:       strings.TrimSpace(d.ClientInfo.Notes),
		},
		Services: services,
		Subtotal: totals.Subtotal,
		Discount: discount,
		TaxValue: totals.Tax,
		Total:    totals.Total,
	}
}
