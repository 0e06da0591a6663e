package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamcatcher/internal/common"
	"github.com/dmitrijs2005/dreamcatcher/internal/models"
	"github.com/dmitrijs2005/dreamcatcher/internal/vfs"
)

// Guest upgrade steps, in order.
const (
	stepSnapshot = "snapshot guest namespace"
	stepCreate   = "create account"
	stepImport   = "import into new namespace"
	stepWipe     = "wipe guest namespace"
)

// UpgradeError reports the upgrade step that failed. Steps before it have
// been undone.
type UpgradeError struct {
	Step string
	Err  error
}

func (e *UpgradeError) Error() string {
	return fmt.Sprintf("guest upgrade failed at %q: %v", e.Step, e.Err)
}

func (e *UpgradeError) Unwrap() error { return e.Err }

// UpgradeGuestAccount turns the guest session into a registered account,
// carrying over the guest's balance and namespace.
//
// The guest namespace is buffered in full before anything is written. If the
// import into the new namespace fails, the new directory entry is removed and
// the guest session stays as it was. A failure to wipe the guest namespace
// afterwards is logged; the upgrade itself has succeeded by then.
func (m *Manager) UpgradeGuestAccount(ctx context.Context, p Profile, password []byte) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated {
		return models.PublicUser{}, common.ErrNotAuthenticated
	}
	if !m.user.IsGuest() {
		return models.PublicUser{}, common.ErrNotGuest
	}
	guest := m.user

	u, err := m.newEmailUser(ctx, p, password, guest.SubscriptionTier, guest.DreamEssence)
	if err != nil {
		return models.PublicUser{}, err
	}

	m.log.Info(ctx, "guest upgrade", "step", stepSnapshot)
	snap, err := m.ns.ExportSnapshot(ctx)
	if err != nil {
		return models.PublicUser{}, &UpgradeError{Step: stepSnapshot, Err: err}
	}
	entries, err := vfs.ParseSnapshot(snap)
	if err != nil {
		return models.PublicUser{}, &UpgradeError{Step: stepSnapshot, Err: err}
	}
	// the balance moves to the directory record
	delete(entries, GuestTierKey)
	delete(entries, GuestEssenceKey)

	m.log.Info(ctx, "guest upgrade", "step", stepCreate, "email", u.Email)
	if err := m.dir.Put(ctx, u); err != nil {
		return models.PublicUser{}, &UpgradeError{Step: stepCreate, Err: err}
	}

	m.log.Info(ctx, "guest upgrade", "step", stepImport, "keys", len(entries))
	m.ns.SetActiveUser(u.Email)
	if err := m.ns.ImportEntries(ctx, entries); err != nil {
		m.ns.SetActiveUser(models.GuestEmail)
		if derr := m.dir.Delete(ctx, u.Email); derr != nil {
			m.log.Error(ctx, "failed to remove account after failed upgrade", "email", u.Email, "error", derr)
		}
		return models.PublicUser{}, &UpgradeError{Step: stepImport, Err: err}
	}

	m.log.Info(ctx, "guest upgrade", "step", stepWipe)
	if err := m.ns.ClearUser(ctx, models.GuestEmail); err != nil {
		m.log.Warn(ctx, "guest namespace left behind after upgrade", "error", err)
	}

	m.authenticate(ctx, u.Public())
	return m.user, nil
}
