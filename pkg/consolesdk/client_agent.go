package consolesdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListAgents returns one page of reseller accounts.
func (c *Client) ListAgents(ctx context.Context, q PageQuery) (*Page[Agent], error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	env, err := c.Call(ctx, http.MethodGet, "/open/app/agent/list", RequestOptions{
		Query: q.values("pageSize"),
	})
	if err != nil {
		return nil, err
	}

	page, err := DecodeData[Page[Agent]](env)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAgent returns a single agent.
func (c *Client) GetAgent(ctx context.Context, id int64) (*Agent, error) {
	env, err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/open/app/agent/%d", id), RequestOptions{
		Route: "/open/app/agent/{id}",
	})
	if err != nil {
		return nil, err
	}

	agent, err := DecodeData[Agent](env)
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// AgentStatistics returns the usage summary of an agent.
func (c *Client) AgentStatistics(ctx context.Context, id int64) (*AgentStatistics, error) {
	env, err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/open/app/agent/%d/statistics", id), RequestOptions{
		Route: "/open/app/agent/{id}/statistics",
	})
	if err != nil {
		return nil, err
	}

	stats, err := DecodeData[AgentStatistics](env)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdjustAgentBalance credits or debits an agent's balance.
func (c *Client) AdjustAgentBalance(ctx context.Context, id int64, req BalanceAdjustment) error {
	if err := Validate(req); err != nil {
		return err
	}

	_, err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/agent/%d/balance", id), RequestOptions{
		Body:  req,
		Route: "/agent/{id}/balance",
	})
	return err
}

// UpdateAgentStatus enables or disables an agent. The backend reads the
// status from the query string.
func (c *Client) UpdateAgentStatus(ctx context.Context, id int64, req AgentStatusUpdate) error {
	if err := Validate(req); err != nil {
		return err
	}

	_, err := c.Call(ctx, http.MethodPut, fmt.Sprintf("/open/app/agent/%d/status", id), RequestOptions{
		Query: url.Values{"status": {req.Status}},
		Route: "/open/app/agent/{id}/status",
	})
	return err
}

// values encodes the page selection. Zero values are left to the backend
// defaults. sizeKey differs between endpoints.
func (q PageQuery) values(sizeKey string) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set(sizeKey, strconv.Itoa(q.PageSize))
	}
	return v
}
