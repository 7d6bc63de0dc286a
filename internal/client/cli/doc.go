// Package cli provides the interactive social feed command-line client.
//
// It wires configuration, local storage, the HTTP client, the query cache and
// the feature services, then runs a REPL over them. Typical flow: restore the
// stored session, register for push notifications, and execute user commands.
//
// Key features:
//   - Signup / Login / Logout
//   - Feed browsing with pagination, optionally filtered by username
//   - Posting, liking and commenting
//   - Notifications with read tracking
//   - Viewing and editing profiles
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartNotificationWatcher, and runREPL for details.
package cli
