package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"simcoe_portal/internal/quotes/builder"
	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

// PriceService prices one service line. The calculate endpoint takes and
// returns a batch; the portal always sends exactly one line and unwraps
// the first result.
func (c *Client) PriceService(ctx context.Context, req domain.PricingRequest) (domain.PricingBreakdown, error) {
	body := struct {
		Services []domain.PricingRequest `json:"services"`
	}{Services: []domain.PricingRequest{req}}

	var resp envelope[struct {
		Services []domain.PricingBreakdown `json:"services"`
	}]
	if err := c.doJSON(ctx, http.MethodPost, "/quote/calculate", body, &resp); err != nil {
		return domain.PricingBreakdown{}, err
	}
	if len(resp.Data.Services) == 0 {
		return domain.PricingBreakdown{}, apperr.Unavailable("quote service returned no pricing")
	}
	return resp.Data.Services[0], nil
}

// CreateQuote persists a new quote and returns it as stored.
func (c *Client) CreateQuote(ctx context.Context, payload builder.Payload) (domain.Quote, error) {
	var resp envelope[domain.Quote]
	if err := c.doJSON(ctx, http.MethodPost, "/quote/create", payload, &resp); err != nil {
		return domain.Quote{}, err
	}
	return resp.Data, nil
}

// UpdateQuote replaces a persisted quote wholesale.
func (c *Client) UpdateQuote(ctx context.Context, quoteID string, payload builder.Payload) (domain.Quote, error) {
	var resp envelope[domain.Quote]
	if err := c.doJSON(ctx, http.MethodPut, "/quote/update/"+url.PathEscape(quoteID), payload, &resp); err != nil {
		return domain.Quote{}, err
	}
	return resp.Data, nil
}

// GetQuote fetches one quote by id.
func (c *Client) GetQuote(ctx context.Context, quoteID string) (domain.Quote, error) {
	var resp envelope[domain.Quote]
	if err := c.doJSON(ctx, http.MethodGet, "/quote/"+url.PathEscape(quoteID), nil, &resp); err != nil {
		return domain.Quote{}, err
	}
	return resp.Data, nil
}

// DeleteQuote removes a quote.
func (c *Client) DeleteQuote(ctx context.Context, quoteID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/quote/"+url.PathEscape(quoteID), nil, nil)
}

// SetQuoteStatus moves a quote through the acceptance workflow. The
// status vocabulary belongs to the quote service; the portal validates
// against the known set before calling.
func (c *Client) SetQuoteStatus(ctx context.Context, quoteID string, status domain.QuoteStatus) (domain.Quote, error) {
	if !status.Valid() {
		return domain.Quote{}, apperr.Validation("status must be PENDING, ACCEPTED or REJECTED")
	}
	body := struct {
		QuoteID string             `json:"quoteId"`
		Status  domain.QuoteStatus `json:"status"`
	}{QuoteID: quoteID, Status: status}

	var resp envelope[domain.Quote]
	if err := c.doJSON(ctx, http.MethodPost, "/quote/status", body, &resp); err != nil {
		return domain.Quote{}, err
	}
	return resp.Data, nil
}

// ListFilter narrows a quote listing. Zero values mean "no filter"; Page
// is 1-based.
type ListFilter struct {
	Page   int
	Limit  int
	Text   string
	UserID string
}

// ListQuotes fetches one page of quotes, newest first.
func (c *Client) ListQuotes(ctx context.Context, filter ListFilter) ([]domain.Quote, error) {
	params := url.Values{}
	if filter.Page > 0 {
		params.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Text != "" {
		params.Set("text", filter.Text)
	}
	if filter.UserID != "" {
		params.Set("userId", filter.UserID)
	}

	path := "/quote/list"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp envelope[[]domain.Quote]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
