// Package terminal is the CLI's login surface: it tells the user to log in
// again after the backend rejected the stored credential.
package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/coffeeviz-cli/internal/ports"
)

const DefaultHint = "Your session has ended. Run `cvz login` to sign in again."

type Navigator struct {
	out  io.Writer
	hint string

	mu    sync.Mutex
	shown bool
}

var _ ports.Navigator = (*Navigator)(nil)

func NewNavigator(out io.Writer, hint string) *Navigator {
	if hint == "" {
		hint = DefaultHint
	}
	return &Navigator{out: out, hint: hint}
}

// RedirectToLogin prints the hint the first time it is called.
func (n *Navigator) RedirectToLogin(context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.shown || n.out == nil {
		return
	}
	n.shown = true
	_, _ = fmt.Fprintln(n.out, n.hint)
}

func (n *Navigator) Redirected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.shown
}
