// Package client provides a property store backed by the rentbook REST API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/evcraddock/rentbook/internal/property"
)

// Client is an HTTP client for the rentbook API. It implements property.Store.
type Client struct {
	http *resty.Client
}

var _ property.Store = (*Client)(nil)

// New creates a new API client. Requests are not retried.
func New(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c}
}

type apiError struct {
	Error string `json:"error"`
}

// DeleteResponse is the response from DELETE /api/properties/{id}.
type DeleteResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}

// ListAll returns every stored property row.
func (c *Client) ListAll(ctx context.Context) ([]property.Row, error) {
	var rows []property.Row
	if _, err := c.do(ctx, http.MethodGet, "/api/properties", nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []property.Row{}
	}
	return rows, nil
}

// Insert stores a new property. The server assigns the id.
func (c *Client) Insert(ctx context.Context, row property.Row) (property.Row, error) {
	row.ID = ""
	var saved property.Row
	if _, err := c.do(ctx, http.MethodPost, "/api/properties", row, &saved); err != nil {
		return property.Row{}, err
	}
	return saved, nil
}

// Update patches property id. It returns nil when the server has no such property.
func (c *Client) Update(ctx context.Context, id string, row property.Row) (*property.Row, error) {
	row.ID = ""
	var saved property.Row
	status, err := c.do(ctx, http.MethodPatch, propertyPath(id), row, &saved)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes property id. Deleting an unknown id is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	var resp DeleteResponse
	_, err := c.do(ctx, http.MethodDelete, propertyPath(id), nil, &resp)
	return err
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

func propertyPath(id string) string {
	return "/api/properties/" + url.PathEscape(id)
}

// do executes a request and maps error responses to Go errors.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) (int, error) {
	var errResp apiError
	req := c.http.R().SetContext(ctx).SetError(&errResp)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		if errResp.Error != "" {
			return resp.StatusCode(), fmt.Errorf("%s", errResp.Error)
		}
		return resp.StatusCode(), fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode()))
	}
	return resp.StatusCode(), nil
}
