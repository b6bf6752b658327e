package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/proxyconsole/pkg/consolesdk"
	"github.com/aussiebroadwan/proxyconsole/pkg/slogx"
)

// ErrLoginRequired is returned by commands that need a session when there is
// none.
var ErrLoginRequired = errors.New("please login first: console login")

const usage = `Usage: console [global flags] <command> [flags]

Commands:
  login                      Log in and store the session token
  logout                     Remove the stored session token
  whoami                     Show the logged-in operator
  passwd                     Change the operator password
  agents list|show|stats|balance|status
  users list|create|status
  orders list
  prices show|set|agent|sync
  dashboard                  Show the landing page summary
  version                    Print the console version

Run 'console <command> -h' for command flags.
`

func (app *Application) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(app.stderr, usage)
		return errors.New("no command given")
	}

	cmd, rest := args[0], args[1:]
	ctx = slogx.WithCommand(ctx, cmd)

	switch cmd {
	case "login":
		return app.commandLogin(ctx, rest)
	case "logout":
		return app.commandLogout(ctx, rest)
	case "whoami":
		return app.commandWhoami(ctx, rest)
	case "passwd":
		return app.commandPasswd(ctx, rest)
	case "agents":
		return app.commandAgents(ctx, rest)
	case "users":
		return app.commandUsers(ctx, rest)
	case "orders":
		return app.commandOrders(ctx, rest)
	case "prices":
		return app.commandPrices(ctx, rest)
	case "dashboard":
		return app.commandDashboard(ctx, rest)
	case "version", "--version", "-v":
		fmt.Fprintf(app.stdout, "console %s\n", BuildVersion)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(app.stdout, usage)
		return nil
	default:
		fmt.Fprint(app.stderr, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// subcommand dispatches the second word of a command group.
func subcommand(args []string, group string, handlers map[string]func([]string) error) error {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	slices.Sort(names)

	if len(args) == 0 {
		return fmt.Errorf("usage: console %s <%s>", group, strings.Join(names, "|"))
	}

	handler, ok := handlers[args[0]]
	if !ok {
		return fmt.Errorf("unknown %s command: %s", group, args[0])
	}
	return handler(args[1:])
}

// requireLogin resolves the stored token into a session. Commands that talk
// to the backend on behalf of the operator call it first.
func requireLogin(ctx context.Context) (*consolesdk.Session, error) {
	session, ok := consolesdk.SessionFromContext(ctx)
	if !ok {
		return nil, errors.New("no session in context")
	}

	session.Initialize(ctx)
	if !session.State().IsAuthenticated {
		return nil, ErrLoginRequired
	}
	return session, nil
}

func (app *Application) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.stderr)
	return fs
}

// parseFlags treats -h as success so help output does not end in an error.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// idArg splits a leading numeric id off args.
func idArg(args []string, what string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%s id is required", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid %s id: %q", what, args[0])
	}
	return id, args[1:], nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}
