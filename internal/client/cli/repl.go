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
	Keygen(ctx context.Context) error
	Keys(ctx context.Context) error
	Send(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Fetch(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	History(ctx context.Context) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the SealDrop CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                 - show available commands
//	  - keygen               - create a local key pair
//	  - keys                 - list local key pairs
//	  - register             - create an account
//	  - login                - authenticate
//	  - exit | quit          - leave the program
//
//	Logged in:
//	  - help                 - show available commands
//	  - send <file> <user>   - seal a file and send it
//	  - list                 - list received packages
//	  - fetch <id>           - download and open a package
//	  - url <id>             - print a direct download URL
//	  - delete <id>          - delete a package
//	  - history              - show the local send/receive log
//	  - whoami               - show account and key fingerprint
//	  - logout               - log out
//	  - exit | quit          - leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sd> %s > ", statusFn()))
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
				printlnFn("Available commands: send <file> <user>, (l)ist, fetch <id>, url <id>, delete <id>, history, whoami, logout, exit")
			} else {
				printlnFn("Available commands: keygen, keys, register, login, exit")
			}

		case "keygen":
			_ = a.Keygen(ctx)

		case "keys":
			_ = a.Keys(ctx)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "send":
			_ = a.Send(ctx, args)

		case "l", "list":
			_ = a.List(ctx)

		case "fetch":
			_ = a.Fetch(ctx, args)

		case "url":
			_ = a.URL(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "history":
			_ = a.History(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
