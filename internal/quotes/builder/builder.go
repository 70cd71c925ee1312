// Package builder holds the mutable state of one draft quote — client
// details, the ordered priced line list, and the discount choice — and
// derives the money fields locally. Line pricing itself always comes from
// the remote quote service; the builder only sums what was already priced.
package builder

import (
	"regexp"
	"strings"
	"time"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

// TaxRate is the fixed HST applied after discount. A business-rule
// constant, not configurable on the portal side.
const TaxRate = 0.13

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Draft is an in-progress, not-yet-persisted quote. It is JSON-serialized
// into the session's draft store between requests.
type Draft struct {
	ID            string               `json:"id"`
	QuoteID       string               `json:"quoteId,omitempty"` // set when editing a persisted quote
	ClientInfo    domain.ClientInfo    `json:"clientInfo"`
	Lines         []domain.ServiceLine `json:"lines"`
	DiscountType  domain.DiscountType  `json:"discountType"`
	DiscountValue *float64             `json:"discountValue,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// New creates an empty draft with a flat discount of nothing, mirroring a
// freshly opened quote form.
func New(id string) *Draft {
	now := time.Now().UTC()
	return &Draft{
		ID:           id,
		Lines:        []domain.ServiceLine{},
		DiscountType: domain.DiscountFlat,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FromQuote seeds a draft from a persisted quote so it can be edited and
// resubmitted as a full replace.
func FromQuote(id string, quote domain.Quote) *Draft {
	draft := New(id)
	draft.QuoteID = quote.ID
	draft.ClientInfo = quote.ClientInfo
	draft.Lines = append(draft.Lines, quote.Services...)

	// The persisted discount is flattened; a positive percentage means a
	// percentage discount was chosen, otherwise the flat amount stands.
	if quote.Discount.Percentage > 0 {
		v := quote.Discount.Percentage
		draft.DiscountType = domain.DiscountPercentage
		draft.DiscountValue = &v
	} else if quote.Discount.Flat > 0 {
		v := quote.Discount.Flat
		draft.DiscountType = domain.DiscountFlat
		draft.DiscountValue = &v
	}

	return draft
}

// AddOrReplaceLine appends line, or replaces the element at *index when an
// index is given (editing in place). The same service type may appear any
// number of times as distinct lines. An out-of-range index appends.
func (d *Draft) AddOrReplaceLine(line domain.ServiceLine, index *int) {
	if index != nil && *index >= 0 && *index < len(d.Lines) {
		d.Lines[*index] = line
	} else {
		d.Lines = append(d.Lines, line)
	}
	d.UpdatedAt = time.Now().UTC()
}

// RemoveLine removes the line at index. Out-of-range indexes are a no-op.
func (d *Draft) RemoveLine(index int) {
	if index < 0 || index >= len(d.Lines) {
		return
	}
	d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
	d.UpdatedAt = time.Now().UTC()
}

// SetDiscount records the discount choice. The numeric value deliberately
// carries over when the type switches; see the product note in DESIGN.md.
// PERCENTAGE values are interpreted as 0-100 by callers.
func (d *Draft) SetDiscount(discountType domain.DiscountType, value float64) error {
	if discountType != domain.DiscountFlat && discountType != domain.DiscountPercentage {
		return apperr.Validation("discount type must be FLAT or PERCENTAGE")
	}
	if value < 0 {
		return apperr.Validation("discount value must not be negative")
	}
	d.DiscountType = discountType
	d.DiscountValue = &value
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Totals are the derived money fields of a draft.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives the money fields from the current lines and
// discount. It is a pure function of the draft state.
func (d *Draft) ComputeTotals() Totals {
	var subtotal float64
	for _, line := range d.Lines {
		subtotal += line.Subtotal
	}

	var value float64
	if d.DiscountValue != nil {
		value = *d.DiscountValue
	}

	var discount float64
	switch d.DiscountType {
	case domain.DiscountPercentage:
		discount = subtotal * value / 100
	default:
		discount = value
	}

	tax := (subtotal - discount) * TaxRate

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

// ValidationResult reports every violated rule at once so the form can
// show them all; Validate never fails fast and never returns an error.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks the draft against the submission rules.
func (d *Draft) Validate() ValidationResult {
	errs := []string{}

	if strings.TrimSpace(d.ClientInfo.FirstName) == "" {
		errs = append(errs, "First Name is required")
	}
	if strings.TrimSpace(d.ClientInfo.Address) == "" {
		errs = append(errs, "Address is required")
	}
	if strings.TrimSpace(d.ClientInfo.City) == "" {
		errs = append(errs, "City is required")
	}
	if strings.TrimSpace(d.ClientInfo.Province) == "" {
		errs = append(errs, "Province is required")
	}
	if strings.TrimSpace(d.ClientInfo.PostalCode) == "" {
		errs = append(errs, "Postal Code is required")
	}
	if strings.TrimSpace(d.ClientInfo.PhoneNumber) == "" {
		errs = append(errs, "Phone Number is required")
	}
	if email := strings.TrimSpace(d.ClientInfo.Email); email != "" && !emailRegex.MatchString(email) {
		errs = append(errs, "Please enter a valid email address")
	}
	if len(d.Lines) == 0 {
		errs = append(errs, "At least one service must be added")
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
