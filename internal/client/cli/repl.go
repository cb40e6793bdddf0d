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
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Send(ctx context.Context) error
	Inbox(ctx context.Context) error
	Outbox(ctx context.Context) error
	Get(ctx context.Context, contentID string) error
	Watch(ctx context.Context) error
	Unwatch(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the sealdrop CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Locked state accepts only unlock and exit; every other command needs the
// signing key. Errors returned by command handlers are ignored here, the
// handlers report their own failures. This keeps the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sd %s> ", statusFn()))
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
			if a.isUnlocked() {
				printlnFn("Available commands: send, inbox, outbox, get <id>, watch, unwatch, lock, exit")
			} else {
				printlnFn("Available commands: unlock, exit")
			}

		case "unlock":
			_ = a.Unlock(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "send":
			if !a.isUnlocked() {
				printlnFn("Unlock first")
				continue
			}
			_ = a.Send(ctx)

		case "inbox":
			if !a.isUnlocked() {
				printlnFn("Unlock first")
				continue
			}
			_ = a.Inbox(ctx)

		case "outbox", "sent":
			if !a.isUnlocked() {
				printlnFn("Unlock first")
				continue
			}
			_ = a.Outbox(ctx)

		case "get":
			if !a.isUnlocked() {
				printlnFn("Unlock first")
				continue
			}
			if len(args) == 0 {
				printlnFn("Usage: get <content-id>")
				continue
			}
			_ = a.Get(ctx, args[0])

		case "watch":
			if !a.isUnlocked() {
				printlnFn("Unlock first")
				continue
			}
			_ = a.Watch(ctx)

		case "unwatch", "stop":
			_ = a.Unwatch(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
