package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	userName, _, eventID := a.session()
	s := ""
	if userName != "" {
		s = userName + " "
	}
	if eventID != "" {
		s = s + "@" + eventID + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the start-up housekeeping, asks for the operator login, starts
// the connectivity watcher and then blocks in the REPL.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Orbit door check-in (type 'help' for commands)")

	if err := a.lifecycle.Initialize(ctx); err != nil {
		a.log.Error(ctx, "cache housekeeping failed", "error", err)
	}
	a.restoreActiveEvent(ctx)

	if err := a.Login(ctx); err != nil {
		a.log.Warn(ctx, "login prompt failed", "error", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
