package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
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
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Not logged in:
//	  help, register, login, exit | quit
//
//	Logged in:
//	  help, (l)ist, add, done <id>, undo <id>, rm <id>, whoami, logout, exit | quit
//
// Command errors are reported by the handlers themselves; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("todo%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, done <id>, undo <id>, rm <id>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "l", "list", "add", "done", "undo", "rm", "whoami", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			runAuthenticated(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func runAuthenticated(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "l", "list":
		_ = a.List(ctx)
	case "add":
		_ = a.Add(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	case "logout":
		_ = a.Logout(ctx)
	case "done", "undo", "rm":
		if len(args) == 0 {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
			return
		}
		if cmd == "rm" {
			_ = a.Delete(ctx, args[0])
		} else {
			_ = a.SetCompleted(ctx, args[0], cmd == "done")
		}
	}
}
