// Package guard gates navigation between public and protected views based on
// session state. A gate decides, per evaluation, whether to render its
// children or redirect elsewhere; the decision always follows the same state
// machine: CHECKING, then AUTHENTICATED or ANONYMOUS.
package guard

import (
	"context"

	"github.com/orbitapp/orbit-cli/internal/client/models"
)

// Route names a navigable view.
type Route string

const (
	RouteLogin     Route = "/login"
	RouteRegister  Route = "/register"
	RouteDashboard Route = "/dashboard"
)

// State is the per-evaluation session state.
type State int

const (
	StateChecking State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating a gate: render the guarded view, or
// redirect. User is set when the session resolved to an authenticated user.
type Decision struct {
	Render     bool
	RedirectTo Route
	User       *models.User
}

// Resolver is the slice of the session service the guards consult.
type Resolver interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	HasToken(ctx context.Context) (bool, error)
	HasCachedUser() bool
}

// Gate is a view-level gate. The two constructors differ only in which
// direction the gate faces; the evaluation logic is shared.
type Gate struct {
	sessions   Resolver
	authOnly   bool
	redirectTo Route

	// OnChecking, if set, fires when evaluation is about to block on a
	// network fetch (token present, cache cold). The authenticated-only
	// view uses it to show a loading placeholder; the guest-only view
	// renders nothing while checking and leaves it unset.
	OnChecking func()
}

// RequireAuth builds a gate that renders only for authenticated users and
// redirects everyone else to the login view.
func RequireAuth(sessions Resolver) *Gate {
	return &Gate{sessions: sessions, authOnly: true, redirectTo: RouteLogin}
}

// GuestOnly builds a gate that renders only for anonymous visitors and
// redirects authenticated users to the dashboard.
func GuestOnly(sessions Resolver) *Gate {
	return &Gate{sessions: sessions, authOnly: false, redirectTo: RouteDashboard}
}

// Evaluate runs the state machine once and returns the render/redirect
// decision. A failed current-user fetch counts as ANONYMOUS: the server is
// the sole authority on token validity, and the guards own the redirect.
func (g *Gate) Evaluate(ctx context.Context) Decision {
	state, user := resolve(ctx, g.sessions, g.OnChecking)

	if state == StateAuthenticated {
		if g.authOnly {
			return Decision{Render: true, User: user}
		}
		return Decision{RedirectTo: g.redirectTo, User: user}
	}

	if g.authOnly {
		return Decision{RedirectTo: g.redirectTo}
	}
	return Decision{Render: true}
}

// Resolve picks the landing route for the root path: the dashboard when a
// user is present, the login view otherwise.
func Resolve(ctx context.Context, sessions Resolver) Route {
	state, _ := resolve(ctx, sessions, nil)
	if state == StateAuthenticated {
		return RouteDashboard
	}
	return RouteLogin
}

func resolve(ctx context.Context, sessions Resolver, onChecking func()) (State, *models.User) {
	// Absent token short-circuits: no request fires on public pages.
	ok, err := sessions.HasToken(ctx)
	if err != nil || !ok {
		return StateAnonymous, nil
	}

	if onChecking != nil && !sessions.HasCachedUser() {
		onChecking()
	}

	user, err := sessions.CurrentUser(ctx)
	if err != nil || user == nil {
		return StateAnonymous, nil
	}
	return StateAuthenticated, user
}
