package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	loggedIn(ctx context.Context) bool
	OpenLogin(ctx context.Context) error
	OpenRegister(ctx context.Context) error
	OpenDashboard(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a command per line and dispatches to the views. The loop
// exits on scanner EOF or "exit"/"quit". Command handlers report their own
// errors to the user; the loop ignores returned errors to stay resilient.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "orbit %s> ", statusFn(ctx))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.loggedIn(ctx) {
				fmt.Fprintln(out, "Available commands: dashboard, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: login, register, exit")
			}

		case "login":
			_ = a.OpenLogin(ctx)

		case "register":
			_ = a.OpenRegister(ctx)

		case "dashboard", "home":
			_ = a.OpenDashboard(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
