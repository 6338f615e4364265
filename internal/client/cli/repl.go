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
	RequestOTP(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context) error
	Login(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a line from reader, parses the first token as the command
// and dispatches to a. The loop exits on EOF, on "exit"/"quit" or when ctx
// is done.
//
//	Not logged in:
//	  - otp <phone> [signup]  request a code
//	  - verify <code>         submit the code
//	  - resend                request a new code once the countdown ends
//	  - login [phone]         password login
//	  - exit | quit
//
//	Logged in:
//	  - whoami                fetch the profile from the backend
//	  - profile k=v ...       update name, email, address, pincode
//	  - refresh               rotate the access token
//	  - logout
//	  - exit | quit
//
// Errors returned by handlers are ignored here; handlers report their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("dudhiya%s> ", statusFn()))

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
				printlnFn("Available commands: whoami, profile, refresh, logout, exit")
			} else {
				printlnFn("Available commands: otp, verify, resend, login, exit")
			}

		case "otp":
			_ = a.RequestOTP(ctx, args)

		case "verify":
			_ = a.Verify(ctx, args)

		case "resend":
			_ = a.Resend(ctx)

		case "login":
			_ = a.Login(ctx, args)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx, args)

		case "refresh":
			_ = a.Refresh(ctx)

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
