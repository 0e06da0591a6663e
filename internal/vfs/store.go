package vfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/kv"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/dmitrijs2005/dreamcatcher/internal/models"
)

const (
	DefaultPrefix = "dream_catcher"

	// FallbackScope is used when no user is active.
	FallbackScope = "unauthenticated"
)

var idEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

// Directory removes user records. DeleteUserPermanently calls it after the
// user's namespace has been cleared.
type Directory interface {
	Delete(ctx context.Context, email string) error
}

// Store is safe for concurrent use; the active user is guarded by a mutex.
type Store struct {
	sub    kv.Substrate
	prefix string
	log    logging.Logger

	mu     sync.RWMutex
	active string
}

// New returns a Store over sub. An empty prefix means DefaultPrefix.
func New(sub kv.Substrate, prefix string, logger logging.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{sub: sub, prefix: prefix, log: logger}
}

// SetActiveUser scopes all following operations to id. An empty id is the
// same as ClearActiveUser.
func (s *Store) SetActiveUser(id string) {
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()
}

func (s *Store) ClearActiveUser() {
	s.SetActiveUser("")
}

// ActiveUser returns the current scope and whether one is set.
func (s *Store) ActiveUser() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

func (s *Store) namespace(id string) string {
	return s.prefix + "-" + idEscaper.Replace(id) + "-"
}

// scope returns the key prefix of the active namespace, falling back to the
// shared scope with a warning.
func (s *Store) scope(ctx context.Context, op string) string {
	id, ok := s.ActiveUser()
	if !ok {
		s.log.Warn(ctx, "no active user, using fallback scope", "op", op, "scope", FallbackScope)
		id = FallbackScope
	}
	return s.namespace(id)
}

// Get decodes the value stored under key into v and reports whether it did.
// Absent keys, substrate errors and undecodable values all return false; the
// latter two are logged.
func (s *Store) Get(ctx context.Context, key string, v any) bool {
	full := s.scope(ctx, "get") + key
	raw, err := s.sub.Get(ctx, full)
	if errors.Is(err, common.ErrorNotFound) {
		return false
	}
	if err != nil {
		s.log.Error(ctx, "storage read failed", "key", full, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.log.Warn(ctx, "stored value is not decodable", "key", full, "error", err)
		return false
	}
	return true
}

// Get returns the value stored under key in the active namespace, or def.
func Get[T any](ctx context.Context, s *Store, key string, def T) T {
	var v T
	if !s.Get(ctx, key, &v) {
		return def
	}
	return v
}

// Set JSON-encodes value and stores it under key. Failures are logged and
// returned wrapped in common.ErrStorageWrite.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	full := s.scope(ctx, "set") + key
	return s.write(ctx, full, value)
}

// Remove deletes key from the active namespace. Absent keys are ignored.
func (s *Store) Remove(ctx context.Context, key string) error {
	full := s.scope(ctx, "remove") + key
	if err := s.sub.Delete(ctx, full); err != nil {
		s.log.Error(ctx, "storage delete failed", "key", full, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	return nil
}

// Keys lists the keys of the active namespace, sorted, without the prefix.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	ns := s.scope(ctx, "keys")
	entries, err := s.sub.List(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespace: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, strings.TrimPrefix(k, ns))
	}
	sort.Strings(keys)
	return keys, nil
}

// ExportSnapshot returns every key of the active namespace as one JSON
// object. Without an active user the result is {}. Stored values that are not
// valid JSON are skipped.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	id, ok := s.ActiveUser()
	if !ok {
		return []byte("{}"), nil
	}
	ns := s.namespace(id)

	entries, err := s.sub.List(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("failed to export namespace: %w", err)
	}

	doc := make(map[string]json.RawMessage, len(entries))
	for k, v := range entries {
		if !json.Valid(v) {
			s.log.Warn(ctx, "skipping undecodable value in export", "key", k)
			continue
		}
		doc[strings.TrimPrefix(k, ns)] = json.RawMessage(v)
	}
	return json.Marshal(doc)
}

// ClearAll deletes every key of the active namespace. Without an active user
// it does nothing.
func (s *Store) ClearAll(ctx context.Context) error {
	id, ok := s.ActiveUser()
	if !ok {
		return nil
	}
	return s.ClearUser(ctx, id)
}

// ClearUser deletes every key of id's namespace whether or not id is active.
func (s *Store) ClearUser(ctx context.Context, id string) error {
	n, err := s.sub.DeletePrefix(ctx, s.namespace(id))
	if err != nil {
		s.log.Error(ctx, "namespace wipe failed", "user", id, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	s.log.Debug(ctx, "namespace wiped", "user", id, "keys", n)
	return nil
}

// DeleteUserPermanently clears the active namespace and removes the user
// from dir. The guest, and a store with no active user, are left alone.
func (s *Store) DeleteUserPermanently(ctx context.Context, dir Directory) error {
	id, ok := s.ActiveUser()
	if !ok || id == models.GuestEmail {
		return nil
	}
	if err := s.ClearAll(ctx); err != nil {
		return err
	}
	if err := dir.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove directory entry: %w", err)
	}
	s.log.Info(ctx, "user deleted", "user", id)
	return nil
}

func (s *Store) write(ctx context.Context, full string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Error(ctx, "value is not encodable", "key", full, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	if err := s.sub.Set(ctx, full, raw); err != nil {
		s.log.Error(ctx, "storage write failed", "key", full, "error", err)
		return fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	return nil
}
