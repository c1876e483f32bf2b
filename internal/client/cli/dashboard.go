package cli

import (
	"context"
	"fmt"
)

// OpenDashboard navigates to the dashboard view. The gate shows a checking
// notice while the session is verified and redirects anonymous visitors to
// the login view.
func (a *App) OpenDashboard(ctx context.Context) error {
	d := a.requireAuth.Evaluate(ctx)
	if !d.Render {
		fmt.Fprintln(a.out, "Redirecting to login.")
		return a.OpenLogin(ctx)
	}

	user := d.User
	fmt.Fprintln(a.out, "-- Dashboard --")
	fmt.Fprintln(a.out, "Email:    ", user.Email)
	if user.FullName != "" {
		fmt.Fprintln(a.out, "Name:     ", user.FullName)
	}
	if !user.CreatedAt.IsZero() {
		fmt.Fprintln(a.out, "Member since:", user.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(a.out, "Projects and tasks are coming soon.")
	return nil
}
