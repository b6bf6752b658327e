package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
)

func (app *Application) commandPrices(ctx context.Context, args []string) error {
	return subcommand(args, "prices", map[string]func([]string) error{
		"show":  func(a []string) error { return app.pricesShow(ctx, a) },
		"set":   func(a []string) error { return app.pricesSet(ctx, a) },
		"agent": func(a []string) error { return app.pricesAgent(ctx, a) },
		"sync":  func(a []string) error { return app.pricesSync(ctx, a) },
	})
}

func (app *Application) pricesShow(ctx context.Context, _ []string) error {
	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	prices, err := app.client.ResourcePrices(ctx)
	if err != nil {
		return err
	}
	return printJSON(app.stdout, prices)
}

func (app *Application) pricesSet(ctx context.Context, args []string) error {
	fs := app.newFlagSet("prices set")
	file := fs.String("file", "-", `JSON object of resource id to price, e.g. {"1": 0.12}; - for stdin`)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	var prices consolesdk.ResourcePriceUpdate
	if err := app.readJSON(*file, &prices); err != nil {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	if err := app.client.UpdateResourcePrices(ctx, prices); err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, "prices updated")
	return nil
}

func (app *Application) pricesAgent(ctx context.Context, args []string) error {
	id, rest, err := idArg(args, "agent")
	if err != nil {
		return err
	}

	fs := app.newFlagSet("prices agent")
	dynamic := fs.Float64("dynamic", 0, "Set the dynamic proxy price")
	static := fs.Float64("static", 0, "Set the static proxy price")
	if ok, err := parseFlags(fs, rest); !ok {
		return err
	}

	var update consolesdk.AgentPriceUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dynamic":
			update.DynamicProxyPrice = dynamic
		case "static":
			update.StaticProxyPrice = static
		}
	})

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	if update.DynamicProxyPrice != nil || update.StaticProxyPrice != nil {
		if err := app.client.UpdateAgentPrices(ctx, id, update); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "agent %d prices updated\n", id)
		return nil
	}

	prices, err := app.client.AgentPrices(ctx, id)
	if err != nil {
		return err
	}

	tw := newTable(app.stdout, "FAMILY", "RESOURCE", "PRICE")
	for _, family := range slices.Sorted(maps.Keys(prices)) {
		items := prices[family]
		for _, name := range slices.Sorted(maps.Keys(items)) {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\n", family, name, items[name])
		}
	}
	return tw.Flush()
}

func (app *Application) pricesSync(ctx context.Context, args []string) error {
	fs := app.newFlagSet("prices sync")
	file := fs.String("file", "", "Excel price sheet (.xlsx or .xls)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *file == "" {
		return errors.New("prices sync: -file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *file, err)
	}
	defer f.Close()

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	result, err := app.client.SyncProductPrices(ctx, *file, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "imported %d of %d, failed %d\n", result.Success, result.Total, result.Failed)
	return nil
}

// readJSON decodes path, or stdin when path is "-", into v.
func (app *Application) readJSON(path string, v any) error {
	var r io.Reader = app.lines
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("no input")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
