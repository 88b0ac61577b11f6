// Package cli provides the interactive Barbot command-line client.
//
// It wires configuration, local token storage, the backend client and the
// services into a REPL. On start the persisted session is restored, a
// background watcher reports whether the backend is reachable, and the user
// chats with the assistant through the ask and suggest commands.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
