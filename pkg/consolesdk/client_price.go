package consolesdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// ResourcePrices returns the global unit prices.
func (c *Client) ResourcePrices(ctx context.Context) (ResourcePrices, error) {
	env, err := c.Call(ctx, http.MethodGet, "/settings/price", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return DecodeData[ResourcePrices](env)
}

// UpdateResourcePrices sets the unit price of resource types by id.
func (c *Client) UpdateResourcePrices(ctx context.Context, prices ResourcePriceUpdate) error {
	if len(prices) == 0 {
		return &ValidationError{Fields: []string{"prices is required"}}
	}

	body := make(map[string]float64, len(prices))
	var fields []string
	for id, price := range prices {
		if id <= 0 {
			fields = append(fields, fmt.Sprintf("resource id %d is invalid", id))
		}
		if price < 0 {
			fields = append(fields, fmt.Sprintf("price of resource %d must not be negative", id))
		}
		body[fmt.Sprintf("resource_%d", id)] = price
	}
	if len(fields) > 0 {
		slices.Sort(fields)
		return &ValidationError{Fields: fields}
	}

	_, err := c.Call(ctx, http.MethodPost, "/settings/price", RequestOptions{Body: body})
	return err
}

// AgentPrices returns the prices an agent pays, in the same shape as the
// global ResourcePrices.
func (c *Client) AgentPrices(ctx context.Context, agentID int64) (ResourcePrices, error) {
	env, err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/settings/agent/%d/prices", agentID), RequestOptions{
		Route: "/settings/agent/{id}/prices",
	})
	if err != nil {
		return nil, err
	}
	return DecodeData[ResourcePrices](env)
}

// UpdateAgentPrices sets the dynamic and/or static proxy price of an agent.
// Fields left nil keep their current value.
func (c *Client) UpdateAgentPrices(ctx context.Context, agentID int64, req AgentPriceUpdate) error {
	var fields []string
	if req.DynamicProxyPrice == nil && req.StaticProxyPrice == nil {
		fields = append(fields, "at least one price is required")
	}
	if req.DynamicProxyPrice != nil && *req.DynamicProxyPrice < 0 {
		fields = append(fields, "dynamic_proxy_price must not be negative")
	}
	if req.StaticProxyPrice != nil && *req.StaticProxyPrice < 0 {
		fields = append(fields, "static_proxy_price must not be negative")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	_, err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/settings/agent/%d/prices", agentID), RequestOptions{
		Body:  req,
		Route: "/settings/agent/{id}/prices",
	})
	return err
}

// SyncProductPrices uploads an Excel product price sheet for import. Only
// .xlsx and .xls files are accepted.
func (c *Client) SyncProductPrices(ctx context.Context, filename string, content io.Reader) (*PriceSyncResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, &ValidationError{Fields: []string{"file must be an .xlsx or .xls spreadsheet"}}
	}
	if content == nil {
		return nil, &ValidationError{Fields: []string{"file is required"}}
	}

	env, err := c.Call(ctx, http.MethodPost, "/product/prices/import", RequestOptions{
		Upload: &Upload{Field: "file", Filename: filepath.Base(filename), Content: content},
	})
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return &PriceSyncResult{}, nil
	}

	result, err := DecodeData[PriceSyncResult](env)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
