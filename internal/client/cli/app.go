// Package cli implements the terminal front end of the Orbit client: the
// login, register, and dashboard views, and the guard-driven navigation
// between them.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/orbitapp/orbit-cli/internal/client/api"
	"github.com/orbitapp/orbit-cli/internal/client/config"
	"github.com/orbitapp/orbit-cli/internal/client/guard"
	"github.com/orbitapp/orbit-cli/internal/client/services"
	"github.com/orbitapp/orbit-cli/internal/client/session"
	"github.com/orbitapp/orbit-cli/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	sessions services.Sessions

	requireAuth *guard.Gate
	guestOnly   *guard.Gate

	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := session.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	store := session.NewSQLiteStore(db)
	apiClient := api.NewClient(c.ServerBaseURL, c.RequestTimeout, store, log)
	sessions := services.NewSessions(apiClient, store, log)

	a := &App{
		config:   c,
		sessions: sessions,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		log:      log,
	}

	a.requireAuth = guard.RequireAuth(sessions)
	a.requireAuth.OnChecking = func() {
		fmt.Fprintln(a.out, "Checking session...")
	}
	// The guest gate stays silent while checking: nothing should flash
	// the guest view at an about-to-be-authenticated user.
	a.guestOnly = guard.GuestOnly(sessions)

	return a, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run resolves the root route and hands control to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to Orbit (type 'help' for commands)")

	switch guard.Resolve(ctx, a.sessions) {
	case guard.RouteDashboard:
		_ = a.OpenDashboard(ctx)
	default:
		_ = a.OpenLogin(ctx)
	}

	// The scanner shares the buffered reader with the input forms so the
	// two never steal bytes from each other.
	scanner := bufio.NewScanner(a.reader)
	runREPL(ctx, a, a.status, scanner, a.out)
}

func (a *App) loggedIn(ctx context.Context) bool {
	ok, err := a.sessions.HasToken(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to read session state", "error", err)
		return false
	}
	return ok
}

// status renders the prompt suffix. It only consults the cache so the prompt
// never blocks on the network.
func (a *App) status(ctx context.Context) string {
	if !a.sessions.HasCachedUser() {
		return ""
	}
	user, err := a.sessions.CurrentUser(ctx)
	if err != nil {
		return ""
	}
	return "(" + user.Email + ") "
}
