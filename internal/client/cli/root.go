package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	parts := make([]string, 0, 2)
	if u := a.authService.State().User; u != nil {
		parts = append(parts, u.Username)
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s) ", strings.Join(parts, " "))
}

// Root restores the session, starts the online watcher and runs the REPL
// until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Barbot, your cocktail assistant (type 'help' for commands)")

	if err := a.authService.Start(ctx); err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}
	if st := a.authService.State(); st.LastError != "" {
		fmt.Fprintln(a.out, a.renderer.Error(st.LastError))
	} else if st.User != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", st.User.DisplayName())
	}
	a.printSuggestions()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
