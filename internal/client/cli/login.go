package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbitapp/orbit-cli/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// OpenLogin navigates to the login view. Authenticated users are redirected
// to the dashboard instead of seeing the form.
func (a *App) OpenLogin(ctx context.Context) error {
	d := a.guestOnly.Evaluate(ctx)
	if !d.Render {
		return a.OpenDashboard(ctx)
	}
	return a.loginForm(ctx)
}

// loginForm renders the login form: prompt for credentials, authenticate,
// and on success continue to the dashboard.
func (a *App) loginForm(ctx context.Context) error {
	fmt.Fprintln(a.out, "-- Log in --")

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.sessions.Login(ctx, email, password); err != nil {
		// A 401 here means the submitted credentials were wrong, not that a
		// session expired.
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Incorrect email or password.")
			return nil
		}
		fmt.Fprintln(a.out, api.Message(err))
		return nil
	}

	fmt.Fprintln(a.out, "Logged in.")
	return a.OpenDashboard(ctx)
}

// Logout ends the session. Running it while already logged out is harmless.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, api.Message(err))
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
