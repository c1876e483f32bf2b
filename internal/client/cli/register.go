package cli

import (
	"context"
	"fmt"

	"github.com/orbitapp/orbit-cli/internal/client/api"
	"github.com/orbitapp/orbit-cli/internal/client/models"
)

// OpenRegister navigates to the register view. Authenticated users are
// redirected to the dashboard.
func (a *App) OpenRegister(ctx context.Context) error {
	d := a.guestOnly.Evaluate(ctx)
	if !d.Render {
		return a.OpenDashboard(ctx)
	}
	return a.registerForm(ctx)
}

// registerForm renders the register view. Registration and authentication
// are separate steps: after a successful registration the form chains an
// explicit login, and when that login fails the user lands on the login
// view, never the dashboard.
func (a *App) registerForm(ctx context.Context) error {
	fmt.Fprintln(a.out, "-- Create account --")

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}

	cred := models.Credential{Email: email, Password: password, FullName: fullName}
	if _, err := a.sessions.Register(ctx, cred); err != nil {
		fmt.Fprintln(a.out, api.Message(err))
		return nil
	}
	fmt.Fprintln(a.out, "Account created.")

	if err := a.sessions.Login(ctx, email, password); err != nil {
		fmt.Fprintln(a.out, "Automatic login failed:", api.Message(err))
		fmt.Fprintln(a.out, "Please log in.")
		return a.loginForm(ctx)
	}
	return a.OpenDashboard(ctx)
}
