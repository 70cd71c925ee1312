package domain

import "time"

// QuoteStatus is the lifecycle state of a persisted quote. These three
// values are the authoritative enumeration; the legacy "formal quote not
// sent" dropdown option seen in one old view is unreconciled product drift
// and is rejected at the boundary.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// Valid reports whether s is a known quote status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// DiscountType selects how a draft discount is interpreted.
type DiscountType string

const (
	DiscountFlat       DiscountType = "FLAT"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// ClientInfo holds the quote recipient's contact and location details.
// FirstName, Address, City, Province, PostalCode, and PhoneNumber are
// required; the rest are optional.
type ClientInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	PhoneNumber string `json:"phoneNumber"`
	OtherPhone  string `json:"otherPhone,omitempty"`
	Email       string `json:"email,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Units       string `json:"units,omitempty"`
}

// ServiceLine is one priced service within a quote. The quantity fields
// mirror the wire shape (units or the wood measurements, by variant); the
// pricing fields are only ever copied from a PricingBreakdown returned by
// the remote quote service.
type ServiceLine struct {
	ID          string      `json:"id,omitempty"`
	ServiceType ServiceType `json:"serviceType"`

	Units             float64 `json:"units,omitempty"`
	AreaSquareFootage float64 `json:"areaSquareFootage,omitempty"`
	NumberOfStairs    float64 `json:"numberOfStairs,omitempty"`
	NumberOfPosts     float64 `json:"numberOfPosts,omitempty"`
	RailingLengthFeet float64 `json:"railingLengthFeet,omitempty"`
	NumberOfSpindles  float64 `json:"numberOfSpindles,omitempty"`

	SetupMinutes      float64 `json:"setupMinutes"`
	PerUnitMinutes    float64 `json:"perUnitMinutes"`
	HourlyCrewCharge  float64 `json:"hourlyCrewCharge"`
	NumberOfPersons   float64 `json:"numberOfPersons"`
	TotalTimeMinutes  float64 `json:"totalTimeMinutes"`
	TotalTimeHours    float64 `json:"totalTimeHours"`
	CalendarSlotHours float64 `json:"calendarSlotHours"`
	Subtotal          float64 `json:"subtotal"`
	Total             float64 `json:"total,omitempty"`
}

// Quantity returns the tagged quantity view of the line, for exhaustive
// handling at pricing-request construction and at rendering.
func (l ServiceLine) Quantity() Quantity {
	if l.ServiceType.UsesMeasurements() {
		return WoodMeasurements{
			AreaSquareFootage: l.AreaSquareFootage,
			NumberOfStairs:    l.NumberOfStairs,
			NumberOfPosts:     l.NumberOfPosts,
			RailingLengthFeet: l.RailingLengthFeet,
			NumberOfSpindles:  l.NumberOfSpindles,
		}
	}
	return Units(l.Units)
}

// QuantityLabel renders the line's quantity for lists and invoices.
func (l ServiceLine) QuantityLabel() string {
	switch q := l.Quantity().(type) {
	case WoodMeasurements:
		return formatMeasurements(q)
	case Units:
		return trimFloat(float64(q))
	default:
		return ""
	}
}

// QuoteDiscount is the flattened discount shape the remote service
// persists: flat carries the computed amount, percentage the raw value
// when a percentage discount was chosen.
type QuoteDiscount struct {
	Flat       float64 `json:"flat"`
	Percentage float64 `json:"percentage"`
}

// User is the issuing staff member as the remote service returns it.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

// Quote is the persisted form owned by the remote quote service. The
// portal mutates it only via full replace or a status patch and never
// deletes it locally.
type Quote struct {
	ID         string        `json:"id"`
	Invoice    string        `json:"invoice"`
	ClientInfo ClientInfo    `json:"clientInfo"`
	Services   []ServiceLine `json:"services"`
	Subtotal   float64       `json:"subtotal"`
	Discount   QuoteDiscount `json:"discount"`
	TaxValue   float64       `json:"taxValue"`
	Total      float64       `json:"total"`
	Status     QuoteStatus   `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	User       User          `json:"user"`
}

// ClientName returns the recipient's full display name.
func (q Quote) ClientName() string {
	if q.ClientInfo.LastName == "" {
		return q.ClientInfo.FirstName
	}
	return q.ClientInfo.FirstName + " " + q.ClientInfo.LastName
}

// QuoteSettings is the per-service tariff configuration consumed by the
// remote quote service when pricing a line. The portal renders and edits
// it but never applies it.
type QuoteSettings struct {
	ID          string      `json:"id,omitempty"`
	ServiceType ServiceType `json:"serviceType"`

	SetupMinutes     float64 `json:"setupMinutes,omitempty"`
	PerUnitMinutes   float64 `json:"perUnitMinutes,omitempty"`
	HourlyCrewCharge float64 `json:"hourlyCrewCharge,omitempty"`

	AreaMinutes     float64 `json:"areaMinutes,omitempty"`
	StairsMinutes   float64 `json:"stairsMinutes,omitempty"`
	PostsMinutes    float64 `json:"postsMinutes,omitempty"`
	RailingMinutes  float64 `json:"railingMinutes,omitempty"`
	SpindlesMinutes float64 `json:"spindlesMinutes,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}
