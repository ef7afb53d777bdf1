package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
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
	newNote(ctx context.Context) error
	openNote(ctx context.Context, id string) error
	editNote(ctx context.Context) error
	saveNote(ctx context.Context) error
	listNotes(ctx context.Context) error
	searchNotes(ctx context.Context, q string) error
	deleteNote(ctx context.Context, id string) error
	syncToCloud(ctx context.Context) error
	sweepAll(ctx context.Context) error
	printStatus(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and dispatches
// to methods on 'a'. Unknown commands are reported back to the user. The loop
// exits on scanner EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and swallowed so a failed
// command never kills the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	report := func(err error) {
		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}

	for {
		printlnFn(fmt.Sprintf("notes %s> ", statusFn()))
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
			printlnFn("Available commands: new, open <id>, edit, save, (l)ist, search <text>, delete <id>, cloud, sync, status")
			if a.isLoggedIn() {
				printlnFn("Account: logout, exit")
			} else {
				printlnFn("Account: register, login, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "new":
			report(a.newNote(ctx))

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <id>")
				continue
			}
			report(a.openNote(ctx, args[0]))

		case "edit":
			report(a.editNote(ctx))

		case "save":
			report(a.saveNote(ctx))

		case "l", "list":
			report(a.listNotes(ctx))

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <text>")
				continue
			}
			report(a.searchNotes(ctx, strings.Join(args, " ")))

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			report(a.deleteNote(ctx, args[0]))

		case "cloud":
			report(a.syncToCloud(ctx))

		case "sync":
			report(a.sweepAll(ctx))

		case "status":
			report(a.printStatus(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if user := a.remote.CurrentUserID(); user != "" {
		s = user + " "
	}
	a.mu.Lock()
	s += string(a.mode)
	if a.activeID != "" {
		s += " " + a.activeID
	}
	a.mu.Unlock()
	return fmt.Sprintf("(%s)", s)
}

// Root runs the REPL on stdin until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Notes CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
