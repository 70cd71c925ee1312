package pdf

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"simcoe_portal/internal/quotes/domain"
)

func sampleQuote(lines int) domain.Quote {
	services := make([]domain.ServiceLine, 0, lines)
	for i := 0; i < lines; i++ {
		services = append(services, domain.ServiceLine{
			ServiceType: domain.ExteriorWindowCleaning,
			Units:       float64(i + 1),
			Subtotal:    100,
			Total:       100,
		})
	}
	return domain.Quote{
		ID:      "q-1",
		Invoice: "INV-0042",
		ClientInfo: domain.ClientInfo{
			FirstName:   "Avery",
			LastName:    "Quinn",
			Address:     "12 Lakeshore Rd",
			City:        "Barrie",
			Province:    "ON",
			PostalCode:  "L4M 1A1",
			PhoneNumber: "+1 705-555-0134",
			Email:       "avery@example.com",
		},
		Services:  services,
		Subtotal:  float64(lines) * 100,
		Discount:  domain.QuoteDiscount{Flat: 10},
		TaxValue:  (float64(lines)*100 - 10) * 0.13,
		Total:     (float64(lines)*100 - 10) * 1.13,
		Status:    domain.QuoteStatusPending,
		CreatedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		User:      domain.User{Name: "Jordan Hale", Email: "jordan@example.com", PhoneNumber: "+1 705-555-0177"},
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	raw, err := GenerateInvoicePDF(sampleQuote(3))
	if err != nil {
		t.Fatalf("GenerateInvoicePDF: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("empty document")
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header: %q", raw[:8])
	}
}

// A long item table must flow onto additional pages; the footer repeats
// on each. Page object dictionaries are plain text in the output, so
// counting them is enough to prove pagination.
func TestLongInvoiceSpansMultiplePages(t *testing.T) {
	raw, err := GenerateInvoicePDF(sampleQuote(80))
	if err != nil {
		t.Fatalf("GenerateInvoicePDF: %v", err)
	}

	pages := bytes.Count(raw, []byte("/Type /Page")) - bytes.Count(raw, []byte("/Type /Pages"))
	if pages < 2 {
		t.Fatalf("pages = %d, want at least 2 for an 80-line quote", pages)
	}

	short, err := GenerateInvoicePDF(sampleQuote(2))
	if err != nil {
		t.Fatalf("GenerateInvoicePDF: %v", err)
	}
	shortPages := bytes.Count(short, []byte("/Type /Page")) - bytes.Count(short, []byte("/Type /Pages"))
	if shortPages != 1 {
		t.Fatalf("pages = %d for a 2-line quote, want 1", shortPages)
	}
}

func TestGenerateIsDeterministicInSize(t *testing.T) {
	// Two renders of the same quote must describe the same document.
	a, err := GenerateInvoicePDF(sampleQuote(5))
	if err != nil {
		t.Fatalf("GenerateInvoicePDF: %v", err)
	}
	b, err := GenerateInvoicePDF(sampleQuote(5))
	if err != nil {
		t.Fatalf("GenerateInvoicePDF: %v", err)
	}
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("sizes differ: %d vs %d", len(a), len(b))
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	quote := sampleQuote(1)
	if got := Filename(quote, now); got != "avery-quinn-quote.pdf" {
		t.Fatalf("filename = %q, want avery-quinn-quote.pdf", got)
	}

	quote.ClientInfo.FirstName = ""
	quote.ClientInfo.LastName = ""
	want := fmt.Sprintf("quote-%s-2025-03-14.pdf", quote.ID)
	if got := Filename(quote, now); got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Avery Quinn":     "avery-quinn",
		"  O'Brien & Co ": "o-brien-co",
		"---":             "",
		"Éva Côté":        "éva-côté",
	}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
