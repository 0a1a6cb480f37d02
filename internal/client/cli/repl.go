package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App implements it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Events(ctx context.Context) error
	Download(ctx context.Context, eventID string) error
	Use(ctx context.Context, eventID string) error
	Scan(ctx context.Context, qrSignature string) error
	Verify(ctx context.Context, qrSignature string) error
	Roster(ctx context.Context) error
	Stats(ctx context.Context) error
	Sync(ctx context.Context) error
	Cleanup(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, events, verify <sig>, exit"
	helpLoggedIn  = "Available commands: events, download <eventID>, use <eventID>, scan <sig>, verify <sig>, roster, stats, sync, cleanup, logout, exit"
)

// runREPL reads commands line by line from reader until EOF or exit/quit.
//
//	help                 show available commands
//	login | logout       operator session
//	events               cached rosters and their validity
//	download <eventID>   fetch a roster from the server
//	use <eventID>        select the event to scan for
//	scan <sig>           verify a pass and check the attendee in
//	verify <sig>         verify a pass without checking in
//	roster | stats       active event listing and counts
//	sync                 push pending check-ins now
//	cleanup              drop expired rosters and old synced entries
//	exit | quit
//
// A bare line that is not a command is treated as a scan, so a barcode
// reader in keyboard mode can type straight into the prompt. Handler errors
// are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("orbit %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, arg); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "login":
		return a.Login(ctx)
	case "events":
		return a.Events(ctx)
	case "verify":
		return a.Verify(ctx, arg)
	}

	if !a.isLoggedIn() {
		printlnFn("Please log in first")
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "download":
		return a.Download(ctx, arg)
	case "use":
		return a.Use(ctx, arg)
	case "scan":
		return a.Scan(ctx, arg)
	case "roster":
		return a.Roster(ctx)
	case "stats":
		return a.Stats(ctx)
	case "sync":
		return a.Sync(ctx)
	case "cleanup":
		return a.Cleanup(ctx)
	}

	if arg == "" && len(cmd) == 64 {
		return a.Scan(ctx, cmd)
	}
	printlnFn("Unknown command:", cmd)
	return nil
}
