package service

import (
	"context"
	"time"

	"simcoe_portal/internal/pdf"
)

// RenderInvoice produces the invoice PDF for a quote, returning the bytes
// and the download filename. The archived copy from a previous delivery
// is served when one exists; otherwise the PDF is rendered from the live
// quote (or its snapshot when the quote service is down) and archived for
// next time.
func (s *Service) RenderInvoice(ctx context.Context, quoteID string) ([]byte, string, error) {
	quote, _, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, "", err
	}
	filename := pdf.Filename(quote, time.Now())

	if s.archive != nil {
		if raw, err := s.archive.Get(ctx, quoteID); err == nil {
			return raw, filename, nil
		}
	}

	raw, err := pdf.GenerateInvoicePDF(quote)
	if err != nil {
		return nil, "", err
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, quoteID, raw); err != nil {
			s.log.Warn("invoice archive failed", "quoteId", quoteID, "error", err)
		}
	}

	return raw, filename, nil
}
