// Package cli provides the interactive Kadrio command-line client.
//
// It wires configuration, the local credential store, the backend API
// client and the session manager behind an interactive REPL. Typical flow:
// restore the session from the local cache, then execute user commands.
//
// Key commands:
//   - login / logout / register
//   - whoami — current actor, role and granted modules
//   - can <item>, route <path>, module <id> — permission queries
//   - refresh — exchange the refresh token for a new access token
//   - reload — retry the session restore or refetch permissions
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
