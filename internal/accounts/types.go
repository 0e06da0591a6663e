package accounts

import (
	"context"

	"github.com/dmitrijs2005/dreamcatcher/internal/models"
	"github.com/dmitrijs2005/dreamcatcher/internal/vfs"
)

type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Guest balance keys inside the guest namespace.
const (
	GuestTierKey    = "subscriptionTier"
	GuestEssenceKey = "dreamEssence"
)

// Profile is the registration form. Password travels separately.
type Profile struct {
	Email    string
	Username string
	Name     string
	Surname  string
	DOB      string
}

// ProfileUpdate lists the editable fields; empty ones are left unchanged.
// The email is the directory key and cannot be changed.
type ProfileUpdate struct {
	Username string
	Name     string
	Surname  string
	DOB      string
}

// IdentityProvider supplies the name and email of an external sign-in.
// Returning an empty value, or common.ErrCancelled, aborts the sign-in.
type IdentityProvider interface {
	Identify(ctx context.Context) (name, email string, err error)
}

// Namespace is the storage namespace layer as seen by the manager.
type Namespace interface {
	SetActiveUser(id string)
	ClearActiveUser()
	ActiveUser() (string, bool)
	Get(ctx context.Context, key string, v any) bool
	Set(ctx context.Context, key string, value any) error
	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportEntries(ctx context.Context, entries map[string][]byte) error
	ClearUser(ctx context.Context, id string) error
	DeleteUserPermanently(ctx context.Context, dir vfs.Directory) error
}

// SessionKeeper persists which user is signed in between runs.
type SessionKeeper interface {
	Remember(ctx context.Context, email string) error
	Recall(ctx context.Context) (email string, ok bool, err error)
	Forget(ctx context.Context) error
}

var _ Namespace = (*vfs.Store)(nil)

func guestDefaults() models.PublicUser {
	return models.Guest(models.TierFree, models.DefaultEssence)
}
