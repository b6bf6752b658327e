package consolesdk

import (
	"context"
	"net/http"
	"strconv"
)

// ListDynamicOrders returns one page of dynamic proxy orders.
func (c *Client) ListDynamicOrders(ctx context.Context, f OrderFilter) (*OrderPage, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	query := f.values("page_size")
	if f.UserID > 0 {
		query.Set("user_id", strconv.FormatInt(f.UserID, 10))
	}
	for key, value := range map[string]string{
		"order_no":   f.OrderNo,
		"pool_type":  f.PoolType,
		"start_date": f.StartDate,
		"end_date":   f.EndDate,
	} {
		if value != "" {
			query.Set(key, value)
		}
	}

	env, err := c.Call(ctx, http.MethodGet, "/orders/dynamic", RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}

	page, err := DecodeData[OrderPage](env)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
