package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/barbot/internal/logging"
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
	WhoAmI(ctx context.Context) error
	Ask(ctx context.Context, text string) error
	Suggest(ctx context.Context, args []string) error
	History(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the barbot CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Command handlers prompt through the same
// reader, so nothing is read ahead of them. Unknown commands are reported
// back to the user. The loop exits on EOF or when the user types "exit" or
// "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           - show available commands
//	  - register       - create an account
//	  - login          - authenticate
//	  - suggest        - list starter questions
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - help           - show available commands
//	  - ask [text]     - send a message (prompted when text is omitted)
//	  - suggest [N]    - list starter questions or send number N
//	  - history        - show the conversation so far
//	  - whoami         - refresh and show the current user
//	  - logout         - log out
//	  - exit | quit    - leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("barbot %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		cctx := logging.ContextWith(ctx, "command", cmd)

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: ask [text], suggest [N], history, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, suggest, exit")
			}

		case "register":
			_ = a.Register(cctx)

		case "login":
			_ = a.Login(cctx)

		case "logout":
			_ = a.Logout(cctx)

		case "whoami":
			if !requireLogin(a) {
				continue
			}
			_ = a.WhoAmI(cctx)

		case "ask":
			if !requireLogin(a) {
				continue
			}
			_ = a.Ask(cctx, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd)))

		case "suggest":
			if len(args) > 0 && !requireLogin(a) {
				continue
			}
			_ = a.Suggest(cctx, args)

		case "history":
			if !requireLogin(a) {
				continue
			}
			_ = a.History(cctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func requireLogin(a execIface) bool {
	if a.isLoggedIn() {
		return true
	}
	printlnFn("Please log in first.")
	return false
}
