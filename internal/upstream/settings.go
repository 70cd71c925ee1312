package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"simcoe_portal/internal/quotes/domain"
)

// pageQuery encodes the shared page/limit query pair; zero values are
// left to the upstream default.
func pageQuery(page, limit int) string {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params.Encode()
}

// ListQuoteSettings fetches a page of pricing tariffs. Zero page or
// limit means the upstream default.
func (c *Client) ListQuoteSettings(ctx context.Context, page, limit int) ([]domain.QuoteSettings, error) {
	path := "/quote-settings"
	if encoded := pageQuery(page, limit); encoded != "" {
		path += "?" + encoded
	}

	var resp envelope[[]domain.QuoteSettings]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateQuoteSettings adds a tariff for a service type.
func (c *Client) CreateQuoteSettings(ctx context.Context, settings domain.QuoteSettings) (domain.QuoteSettings, error) {
	var resp envelope[domain.QuoteSettings]
	if err := c.doJSON(ctx, http.MethodPost, "/quote-settings", settings, &resp); err != nil {
		return domain.QuoteSettings{}, err
	}
	return resp.Data, nil
}

// UpdateQuoteSettings replaces a tariff.
func (c *Client) UpdateQuoteSettings(ctx context.Context, id string, settings domain.QuoteSettings) (domain.QuoteSettings, error) {
	var resp envelope[domain.QuoteSettings]
	if err := c.doJSON(ctx, http.MethodPut, "/quote-settings/"+url.PathEscape(id), settings, &resp); err != nil {
		return domain.QuoteSettings{}, err
	}
	return resp.Data, nil
}

// DeleteQuoteSettings removes a tariff.
func (c *Client) DeleteQuoteSettings(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/quote-settings/"+url.PathEscape(id), nil, nil)
}
