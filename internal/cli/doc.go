// Package cli provides the interactive Dream Catcher terminal client.
//
// It wires configuration, the key-value substrate, the storage namespace
// layer, the session keeper and the account manager into a REPL. On start
// the previous session is restored, so a signed-in user lands straight back
// in their namespace.
//
// Key features:
//   - Sign up, log in (email or Google), continue as guest, upgrade a guest
//   - Profile edits, subscription tier and dream essence balance
//   - Journal entries: set, get, rm and keys in the active namespace
//   - Export / import of namespace snapshots and remote backups
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp and runREPL for details.
package cli
