package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
)

func (app *Application) commandAgents(ctx context.Context, args []string) error {
	return subcommand(args, "agents", map[string]func([]string) error{
		"list":    func(a []string) error { return app.agentsList(ctx, a) },
		"show":    func(a []string) error { return app.agentsShow(ctx, a) },
		"stats":   func(a []string) error { return app.agentsStats(ctx, a) },
		"balance": func(a []string) error { return app.agentsBalance(ctx, a) },
		"status":  func(a []string) error { return app.agentsStatus(ctx, a) },
	})
}

func (app *Application) agentsList(ctx context.Context, args []string) error {
	fs := app.newFlagSet("agents list")
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 20, "Page size (max 100)")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	result, err := app.client.ListAgents(ctx, consolesdk.PageQuery{Page: *page, PageSize: *size})
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(app.stdout, result)
	}

	tw := newTable(app.stdout, "ID", "USERNAME", "STATUS", "BALANCE", "CREATED")
	for _, a := range result.List {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%s\n", a.ID, a.Username, a.Status, a.Balance, a.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%d of %d agents\n", len(result.List), result.Total)
	return nil
}

func (app *Application) agentsShow(ctx context.Context, args []string) error {
	id, _, err := idArg(args, "agent")
	if err != nil {
		return err
	}
	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	agent, err := app.client.GetAgent(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(app.stdout, agent)
}

func (app *Application) agentsStats(ctx context.Context, args []string) error {
	id, _, err := idArg(args, "agent")
	if err != nil {
		return err
	}
	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	stats, err := app.client.AgentStatistics(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(app.stdout, stats)
}

func (app *Application) agentsBalance(ctx context.Context, args []string) error {
	id, rest, err := idArg(args, "agent")
	if err != nil {
		return err
	}

	fs := app.newFlagSet("agents balance")
	amount := fs.Float64("amount", 0, "Amount to add or subtract")
	kind := fs.String("type", consolesdk.BalanceAdd, "add or subtract")
	remark := fs.String("remark", "", "Optional remark")
	if ok, err := parseFlags(fs, rest); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	err = app.client.AdjustAgentBalance(ctx, id, consolesdk.BalanceAdjustment{
		Amount: *amount,
		Type:   *kind,
		Remark: *remark,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "agent %d balance: %s %.2f\n", id, *kind, *amount)
	return nil
}

func (app *Application) agentsStatus(ctx context.Context, args []string) error {
	id, rest, err := idArg(args, "agent")
	if err != nil {
		return err
	}

	fs := app.newFlagSet("agents status")
	status := fs.String("status", "", "active or disabled")
	if ok, err := parseFlags(fs, rest); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	err = app.client.UpdateAgentStatus(ctx, id, consolesdk.AgentStatusUpdate{Status: *status})
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "agent %d is now %s\n", id, *status)
	return nil
}
