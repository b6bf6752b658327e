package app

import (
	"context"
	"fmt"
	"io"
)

const loginHint = "session expired, please log in again: console login"

// cliNavigator is the terminal's login redirect: it tells the operator how to
// log in again. The command that triggered it still fails with its own error.
type cliNavigator struct {
	w io.Writer
}

func (n cliNavigator) RedirectToLogin(context.Context, error) {
	fmt.Fprintln(n.w, loginHint)
}
