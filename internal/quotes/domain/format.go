package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMoney renders a currency amount with a dollar prefix and exactly
// two decimal places, the way every money field appears on invoices.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMeasurements(m WoodMeasurements) string {
	parts := make([]string, 0, 5)
	if m.AreaSquareFootage > 0 {
		parts = append(parts, trimFloat(m.AreaSquareFootage)+" sq ft")
	}
	if m.NumberOfStairs > 0 {
		parts = append(parts, trimFloat(m.NumberOfStairs)+" stairs")
	}
	if m.NumberOfPosts > 0 {
		parts = append(parts, trimFloat(m.NumberOfPosts)+" posts")
	}
	if m.RailingLengthFeet > 0 {
		parts = append(parts, trimFloat(m.RailingLengthFeet)+" ft railing")
	}
	if m.NumberOfSpindles > 0 {
		parts = append(parts, trimFloat(m.NumberOfSpindles)+" spindles")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, ", ")
}
