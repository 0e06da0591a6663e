// Package vfs is the storage namespace layer: a JSON key-value store whose
// keys are scoped by the active user.
//
// Every scoped key is stored in the substrate as
//
//	<prefix>-<user id>-<key>
//
// with '%' and '-' in the user id percent-escaped, so one user's prefix never
// covers another user's keys. Ids holding a '-', such as jean-luc@x.com,
// are therefore stored as jean%2Dluc@x.com and do not match the plain
// <prefix>-<email>-<key> layout other readers of the same store may expect.
// With no active user, operations fall back to a shared "unauthenticated"
// scope and log a warning.
//
// A few unscoped "global" keys (the user directory, the session marker) live
// next to the namespaces and are reached through GetGlobal, SetGlobal and
// RemoveGlobal.
package vfs
