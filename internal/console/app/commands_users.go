package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
)

func (app *Application) commandUsers(ctx context.Context, args []string) error {
	return subcommand(args, "users", map[string]func([]string) error{
		"list":   func(a []string) error { return app.usersList(ctx, a) },
		"create": func(a []string) error { return app.usersCreate(ctx, a) },
		"status": func(a []string) error { return app.usersStatus(ctx, a) },
	})
}

func (app *Application) usersList(ctx context.Context, args []string) error {
	fs := app.newFlagSet("users list")
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 20, "Page size (max 100)")
	username := fs.String("username", "", "Filter by username")
	status := fs.String("status", "", "Filter by status (active, disabled)")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	result, err := app.client.ListUsers(ctx, consolesdk.CustomerFilter{
		PageQuery: consolesdk.PageQuery{Page: *page, PageSize: *size},
		Username:  *username,
		Status:    *status,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(app.stdout, result)
	}

	tw := newTable(app.stdout, "ID", "USERNAME", "STATUS", "BALANCE", "CREATED")
	for _, u := range result.List {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", u.ID, u.Username, u.Status, u.Balance, u.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%d of %d users\n", len(result.List), result.Total)
	return nil
}

func (app *Application) usersCreate(ctx context.Context, args []string) error {
	fs := app.newFlagSet("users create")
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	email := fs.String("email", "", "Optional email")
	remark := fs.String("remark", "", "Optional remark")
	agentID := fs.Int64("agent", 0, "Owning agent id (admin only)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	req := consolesdk.CreateCustomerRequest{
		Username: *username,
		Password: *password,
		Email:    *email,
		Remark:   *remark,
	}
	if *agentID > 0 {
		req.AgentID = agentID
	}
	if req.Password == "" {
		var err error
		if req.Password, err = app.readPassword("Password for new user: "); err != nil {
			return err
		}
	}

	created, err := app.client.CreateUser(ctx, req)
	if err != nil {
		return err
	}
	if created != nil {
		fmt.Fprintf(app.stdout, "user created: %d (%s)\n", created.ID, created.Username)
		return nil
	}
	fmt.Fprintf(app.stdout, "user created: %s\n", req.Username)
	return nil
}

func (app *Application) usersStatus(ctx context.Context, args []string) error {
	id, rest, err := idArg(args, "user")
	if err != nil {
		return err
	}

	fs := app.newFlagSet("users status")
	status := fs.String("status", "", "active or disabled")
	if ok, err := parseFlags(fs, rest); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	if err := app.client.UpdateUserStatus(ctx, id, consolesdk.CustomerStatusUpdate{Status: *status}); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "user %d is now %s\n", id, *status)
	return nil
}
