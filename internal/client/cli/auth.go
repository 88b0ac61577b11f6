package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/barbot/internal/client/models"
	"github.com/dmitrijs2005/barbot/internal/client/session"
	"github.com/dmitrijs2005/barbot/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields and creates the account.
// Registration never logs the user in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Full name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	reg := models.Registration{
		Username: username,
		Email:    email,
		Password: string(password),
		FullName: fullName,
	}
	if _, err := a.authService.Register(ctx, reg); err != nil {
		a.showAuthError(err)
		return err
	}

	fmt.Fprintln(a.out, "Registration successful! Please log in.")
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, username, string(password)); err != nil {
		a.showAuthError(err)
		return err
	}

	if u := a.authService.State().User; u != nil {
		fmt.Fprintf(a.out, "Welcome, %s!\n", u.DisplayName())
	}
	return nil
}

// Logout ends the session. The persisted token is removed even if the
// session was already gone.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI refreshes the current user from the backend. Any failure ends the
// session.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.authService.RefreshUser(ctx); err != nil {
		fmt.Fprintln(a.out, a.renderer.Error("Session ended, please log in again."))
		return err
	}

	u := a.authService.State().User
	if u == nil {
		return nil
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.DisplayName(), u.Username)
	if u.Email != "" {
		fmt.Fprintf(a.out, "Email: %s\n", u.Email)
	}

	token, err := a.tokens.Load(ctx)
	if err != nil || token == "" {
		return nil
	}
	if info, err := session.Inspect(token); err == nil && !info.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Session expires at %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// showAuthError prints the message recorded by the state machine, falling
// back to the error itself for input validation failures.
func (a *App) showAuthError(err error) {
	msg := a.authService.State().LastError
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(a.out, a.renderer.Error(msg))
}
