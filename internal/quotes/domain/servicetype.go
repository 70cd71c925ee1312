// Package domain holds the value types of the quoting domain: service
// kinds, line items, client details, discounts, and the persisted quote
// shape owned by the remote quote service.
package domain

import "strings"

// ServiceType is the closed set of services the company quotes.
type ServiceType string

const (
	ExteriorWindowCleaning ServiceType = "EXTERIOR_WINDOW_CLEANING"
	InteriorWindowCleaning ServiceType = "INTERIOR_WINDOW_CLEANING"
	ExteriorGutterCleaning ServiceType = "EXTERIOR_GUTTER_CLEANING"
	InteriorGutterCleaning ServiceType = "INTERIOR_GUTTER_CLEANING"
	WoodPowerwashing       ServiceType = "WOOD_POWERWASHING"
	ConcretePowerwashing   ServiceType = "CONCRETE_POWERWASHING"
	SidingPowerwashing     ServiceType = "SIDING_POWERWASHING"
	RoofMossRemoval        ServiceType = "ROOF_MOSS_REMOVAL"
	HouseSoftwashing       ServiceType = "HOUSE_SOFTWASHING"
)

// AllServiceTypes lists every service kind in display order.
var AllServiceTypes = []ServiceType{
	ExteriorWindowCleaning,
	InteriorWindowCleaning,
	ExteriorGutterCleaning,
	InteriorGutterCleaning,
	WoodPowerwashing,
	ConcretePowerwashing,
	SidingPowerwashing,
	RoofMossRemoval,
	HouseSoftwashing,
}

// Valid reports whether t is one of the nine known service kinds.
func (t ServiceType) Valid() bool {
	for _, known := range AllServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UsesMeasurements reports whether the service is quantified by the
// structured powerwashing measurements instead of a single unit count.
func (t ServiceType) UsesMeasurements() bool {
	return t == WoodPowerwashing
}

// Label returns the human-readable form of the service type: underscores
// replaced by spaces, each word title-cased.
func (t ServiceType) Label() string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// UnitLabel returns the quantity label shown next to the units field.
func (t ServiceType) UnitLabel() string {
	switch t {
	case ExteriorWindowCleaning, InteriorWindowCleaning:
		return "Windows"
	case ExteriorGutterCleaning, InteriorGutterCleaning:
		return "Linear Feet"
	case WoodPowerwashing:
		return "Measurements"
	case ConcretePowerwashing, SidingPowerwashing:
		return "Square Feet"
	case RoofMossRemoval, HouseSoftwashing:
		return "Square Feet"
	default:
		return "Units"
	}
}
