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
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Feed(ctx context.Context, username string) error
	More(ctx context.Context) error
	Post(ctx context.Context) error
	Like(ctx context.Context, postID string) error
	Unlike(ctx context.Context, postID string) error
	Comments(ctx context.Context, postID string) error
	Comment(ctx context.Context, postID string) error
	Notifications(ctx context.Context) error
	MoreNotifications(ctx context.Context) error
	Read(ctx context.Context, id string) error
	ReadAll(ctx context.Context) error
	Open(ctx context.Context, id string) error
	Profile(ctx context.Context, userID string) error
	EditProfile(ctx context.Context) error
}

const (
	helpGuest  = "Available commands: signup, login, exit"
	helpMember = "Available commands: whoami, feed [username], more, post, like <postId>, unlike <postId>, " +
		"comments <postId>, comment <postId>, notifications, morenotifications, read <id>, readall, " +
		"open <id>, profile [userId], editprofile, logout, exit"
)

// memberOnly lists the commands that need an authenticated session.
var memberOnly = map[string]bool{
	"whoami": true, "feed": true, "more": true, "post": true, "like": true, "unlike": true,
	"comments": true, "comment": true, "notifications": true, "morenotifications": true,
	"read": true, "readall": true, "open": true, "profile": true, "editprofile": true, "logout": true,
}

// runREPL starts a simple read–eval–print loop for the social feed CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own failures. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("feed%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if memberOnly[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "feed":
			_ = a.Feed(ctx, optionalArg(args))

		case "more":
			_ = a.More(ctx)

		case "post":
			_ = a.Post(ctx)

		case "like", "unlike", "comments", "comment", "read", "open":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			dispatchWithID(ctx, a, cmd, args[0])

		case "notifications":
			_ = a.Notifications(ctx)

		case "morenotifications":
			_ = a.MoreNotifications(ctx)

		case "readall":
			_ = a.ReadAll(ctx)

		case "profile":
			_ = a.Profile(ctx, optionalArg(args))

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatchWithID(ctx context.Context, a execIface, cmd, id string) {
	switch cmd {
	case "like":
		_ = a.Like(ctx, id)
	case "unlike":
		_ = a.Unlike(ctx, id)
	case "comments":
		_ = a.Comments(ctx, id)
	case "comment":
		_ = a.Comment(ctx, id)
	case "read":
		_ = a.Read(ctx, id)
	case "open":
		_ = a.Open(ctx, id)
	}
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
