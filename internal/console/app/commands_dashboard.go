package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
)

func (app *Application) commandDashboard(ctx context.Context, args []string) error {
	fs := app.newFlagSet("dashboard")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	info, err := app.client.Dashboard(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(app.stdout, info)
	}
	return printDashboard(app, info)
}

// printDashboard prints scalar fields as a table and nested ones as JSON,
// since the payload differs between admin and agent accounts.
func printDashboard(app *Application, info consolesdk.DashboardInfo) error {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	nested := consolesdk.DashboardInfo{}
	tw := newTable(app.stdout, "METRIC", "VALUE")
	for _, k := range keys {
		switch v := info[k].(type) {
		case map[string]any, []any:
			nested[k] = v
		default:
			fmt.Fprintf(tw, "%s\t%v\n", k, v)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(nested) > 0 {
		return printJSON(app.stdout, nested)
	}
	return nil
}
