package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
)

func (app *Application) commandOrders(ctx context.Context, args []string) error {
	return subcommand(args, "orders", map[string]func([]string) error{
		"list": func(a []string) error { return app.ordersList(ctx, a) },
	})
}

func (app *Application) ordersList(ctx context.Context, args []string) error {
	fs := app.newFlagSet("orders list")
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 20, "Page size (max 100)")
	userID := fs.Int64("user", 0, "Filter by user id")
	orderNo := fs.String("order", "", "Filter by order number")
	pool := fs.String("pool", "", "Filter by pool type")
	from := fs.String("from", "", "Start date (YYYY-MM-DD)")
	to := fs.String("to", "", "End date (YYYY-MM-DD)")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	result, err := app.client.ListDynamicOrders(ctx, consolesdk.OrderFilter{
		PageQuery: consolesdk.PageQuery{Page: *page, PageSize: *size},
		UserID:    *userID,
		OrderNo:   *orderNo,
		PoolType:  *pool,
		StartDate: *from,
		EndDate:   *to,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(app.stdout, result)
	}

	tw := newTable(app.stdout, "ORDER", "USER", "POOL", "TRAFFIC", "AMOUNT", "STATUS", "CREATED")
	for _, o := range result.List {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f\t%.2f\t%s\t%s\n",
			o.OrderNo, o.UserID, o.PoolType, o.Traffic, o.Amount, o.Status, o.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%d of %d orders\n", len(result.List), result.Total)
	return nil
}
