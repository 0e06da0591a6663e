// Package kv provides the key-value substrates the namespace layer stores its
// JSON values in: an in-memory map, SQLite and PostgreSQL.
//
// Keys are opaque, case-sensitive strings. Values are raw bytes; the
// substrates never look inside them.
package kv

import (
	"context"
	"io"
)

// Substrate is a flat key-value store.
type Substrate interface {
	// Get returns the value stored under key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every entry whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)

	// DeletePrefix removes every entry whose key starts with prefix and
	// reports how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Transactional is implemented by substrates that can apply a group of
// writes atomically. fn receives a Substrate bound to the transaction and must
// use it, not the outer one. A non-nil error from fn discards every write.
type Transactional interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Substrate) error) error
}

// Handle is an opened substrate as returned by Open.
type Handle interface {
	Substrate
	Transactional
	io.Closer
}
