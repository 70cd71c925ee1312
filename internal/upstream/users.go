package upstream

import (
	"context"
	"net/http"
	"net/url"

	"simcoe_portal/internal/quotes/domain"
)

// UserInput is the create/update body for a user account. Password is
// only sent when set; the quote service keeps existing credentials
// otherwise.
type UserInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	Password    string `json:"password,omitempty"`
}

// ListUsers fetches a page of user accounts. Zero page or limit means
// the upstream default.
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]domain.User, error) {
	path := "/user"
	if encoded := pageQuery(page, limit); encoded != "" {
		path += "?" + encoded
	}

	var resp envelope[[]domain.User]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id string) (domain.User, error) {
	var resp envelope[domain.User]
	if err := c.doJSON(ctx, http.MethodGet, "/user/"+url.PathEscape(id), nil, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.Data, nil
}

// CreateUser adds a user account.
func (c *Client) CreateUser(ctx context.Context, input UserInput) (domain.User, error) {
	var resp envelope[domain.User]
	if err := c.doJSON(ctx, http.MethodPost, "/user", input, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.Data, nil
}

// UpdateUser replaces a user account's details.
func (c *Client) UpdateUser(ctx context.Context, id string, input UserInput) (domain.User, error) {
	var resp envelope[domain.User]
	if err := c.doJSON(ctx, http.MethodPut, "/user/"+url.PathEscape(id), input, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.Data, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/user/"+url.PathEscape(id), nil, nil)
}
