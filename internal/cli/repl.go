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

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Guest(ctx context.Context) error
	Google(ctx context.Context) error
	Upgrade(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	Tier(ctx context.Context) error
	Essence(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Keys(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Backup(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signup, login, guest, google, help, exit"
	helpSignedIn  = "Available commands: whoami, profile, tier, essence [add|use <n>], " +
		"set <key> <json>, get <key>, rm <key>, keys, export [file], import <file>, " +
		"backup push|pull <name>|list, upgrade, delete-account, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the Dream Catcher CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The same reader is shared with the
// interactive prompts of the handlers. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Errors returned by handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dc %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "signup", "register":
			cmdErr = a.Signup(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "guest":
			cmdErr = a.Guest(ctx)
		case "google":
			cmdErr = a.Google(ctx)
		case "upgrade":
			cmdErr = a.Upgrade(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "tier":
			cmdErr = a.Tier(ctx)
		case "essence":
			cmdErr = a.Essence(ctx, args)
		case "set":
			cmdErr = a.Set(ctx, args)
		case "get":
			cmdErr = a.Get(ctx, args)
		case "rm":
			cmdErr = a.Remove(ctx, args)
		case "keys":
			cmdErr = a.Keys(ctx)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "import":
			cmdErr = a.Import(ctx, args)
		case "backup":
			cmdErr = a.Backup(ctx, args)
		case "delete-account":
			cmdErr = a.DeleteAccount(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
