// Package directory persists the cross-user mapping of email to user record.
package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dreamcatcher/internal/models"
)

// UsersKey is the unscoped storage key of the directory document.
const UsersKey = "dream_catcher_users"

// UserDirectory is the single owned store of user records. It assumes one
// writer; concurrent processes sharing a substrate race last-write-wins.
type UserDirectory interface {
	Get(ctx context.Context, email string) (models.User, bool, error)
	Put(ctx context.Context, u models.User) error
	Delete(ctx context.Context, email string) error
	All(ctx context.Context) (map[string]models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// GlobalStore reads and writes unscoped JSON documents. *vfs.Store is one.
type GlobalStore interface {
	GetGlobal(ctx context.Context, key string, v any) (bool, error)
	SetGlobal(ctx context.Context, key string, value any) error
}

// KVDirectory keeps the whole directory as one JSON object under UsersKey.
type KVDirectory struct {
	store GlobalStore
	mu    sync.Mutex
}

var _ UserDirectory = (*KVDirectory)(nil)

func NewKVDirectory(store GlobalStore) *KVDirectory {
	return &KVDirectory{store: store}
}

func (d *KVDirectory) load(ctx context.Context) (map[string]models.User, error) {
	users := make(map[string]models.User)
	if _, err := d.store.GetGlobal(ctx, UsersKey, &users); err != nil {
		return nil, fmt.Errorf("failed to load user directory: %w", err)
	}
	if users == nil {
		// document holds JSON null
		users = make(map[string]models.User)
	}
	return users, nil
}

func (d *KVDirectory) save(ctx context.Context, users map[string]models.User) error {
	if err := d.store.SetGlobal(ctx, UsersKey, users); err != nil {
		return fmt.Errorf("failed to save user directory: %w", err)
	}
	return nil
}

func (d *KVDirectory) Get(ctx context.Context, email string) (models.User, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	u, ok := users[email]
	return u, ok, nil
}

// Put inserts or replaces the record keyed by u.Email.
func (d *KVDirectory) Put(ctx context.Context, u models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return err
	}
	users[u.Email] = u
	return d.save(ctx, users)
}

// Delete removes email. Absent entries are ignored.
func (d *KVDirectory) Delete(ctx context.Context, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := users[email]; !ok {
		return nil
	}
	delete(users, email)
	return d.save(ctx, users)
}

func (d *KVDirectory) All(ctx context.Context) (map[string]models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// UsernameExists compares case-insensitively.
func (d *KVDirectory) UsernameExists(ctx context.Context, username string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}
