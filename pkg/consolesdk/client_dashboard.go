package consolesdk

import (
	"context"
	"net/http"
)

// Dashboard returns the landing page summary for the logged-in operator.
func (c *Client) Dashboard(ctx context.Context) (DashboardInfo, error) {
	env, err := c.Call(ctx, http.MethodGet, "/open/app/dashboard/info/v2", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return DecodeData[DashboardInfo](env)
}
