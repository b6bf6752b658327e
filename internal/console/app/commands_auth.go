package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
	"github.com/aussiebroadwan/proxyconsole/pkg/slogx"
)

func (app *Application) commandLogin(ctx context.Context, args []string) error {
	fs := app.newFlagSet("login")
	username := fs.String("username", "", "Operator username")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if strings.TrimSpace(*username) == "" {
		return errors.New("-username is required")
	}

	secret := *password
	if secret == "" {
		var err error
		if secret, err = app.readPassword("Password: "); err != nil {
			return err
		}
	}

	if err := app.session.Login(ctx, strings.TrimSpace(*username), secret); err != nil {
		return err
	}

	user := app.session.State().CurrentUser
	slogx.FromContext(ctx).Info("login successful", "user_id", user.ID)
	fmt.Fprintf(app.stdout, "logged in as %s (%s)\n", user.Username, user.Role())
	return nil
}

func (app *Application) commandLogout(ctx context.Context, args []string) error {
	fs := app.newFlagSet("logout")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if err := app.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, "logged out")
	return nil
}

func (app *Application) commandWhoami(ctx context.Context, args []string) error {
	fs := app.newFlagSet("whoami")
	asJSON := fs.Bool("json", false, "Print as JSON")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	session, err := requireLogin(ctx)
	if err != nil {
		return err
	}

	user := session.State().CurrentUser
	if *asJSON {
		return printJSON(app.stdout, user)
	}

	tw := newTable(app.stdout, "ID", "USERNAME", "ROLE", "BALANCE", "LAST LOGIN")
	fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", user.ID, user.Username, user.Role(), user.Balance, user.LastLoginAt)
	return tw.Flush()
}

func (app *Application) commandPasswd(ctx context.Context, args []string) error {
	fs := app.newFlagSet("passwd")
	oldPassword := fs.String("old", "", "Current password (supply to avoid prompt)")
	newPassword := fs.String("new", "", "New password (supply to avoid prompt)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := requireLogin(ctx); err != nil {
		return err
	}

	req := consolesdk.ChangePasswordRequest{OldPassword: *oldPassword, NewPassword: *newPassword}
	var err error
	if req.OldPassword == "" {
		if req.OldPassword, err = app.readPassword("Current password: "); err != nil {
			return err
		}
	}
	if req.NewPassword == "" {
		if req.NewPassword, err = app.readPassword("New password: "); err != nil {
			return err
		}
	}

	if err := app.client.ChangePassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, "password changed")
	return nil
}
