package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Can(ctx context.Context, itemID string) error
	Route(ctx context.Context, route string) error
	Module(ctx context.Context, moduleID string) error
	Refresh(ctx context.Context) error
	Reload(ctx context.Context) error
}

// runREPL starts a read-eval-print loop. It reads a line from the provided
// scanner, parses the first token as the command, and dispatches to methods
// on 'a'. Unknown commands are reported back to the user. The loop exits on
// scanner EOF or when the user types "exit" or "quit".
//
// Commands while not logged in: help, register, login, reload, exit.
// Commands while logged in: help, whoami, can <item>, route <path>,
// module <id>, refresh, reload, logout, exit.
//
// Any errors returned by command handlers are ignored here; handlers
// report their own errors. This keeps the REPL loop resilient and focused
// on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("kadrio %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, can <item>, route <path>, module <id>, refresh, reload, logout, exit")
			} else {
				printlnFn("Available commands: register, login, reload, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "can":
			if len(args) == 0 {
				printlnFn("Usage: can <item>")
				continue
			}
			_ = a.Can(ctx, args[0])

		case "route":
			if len(args) == 0 {
				printlnFn("Usage: route <path>")
				continue
			}
			_ = a.Route(ctx, args[0])

		case "module":
			if len(args) == 0 {
				printlnFn("Usage: module <id>")
				continue
			}
			_ = a.Module(ctx, args[0])

		case "refresh":
			_ = a.Refresh(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
